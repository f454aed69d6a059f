package printer

// GDI 通过 Windows GDI 打印：CreateDCW → StartDocW → StartPage → StretchDIBits → EndPage → EndDoc。
// 目标矩形由设备完成缩放，源像素按原尺寸提交。
type GDI struct {
	printer string
	docName string
}

// NewGDI 创建指向某台已安装打印机的 GDI 传输。
func NewGDI(printer, docName string) *GDI {
	if docName == "" {
		docName = "receipt"
	}
	return &GDI{printer: printer, docName: docName}
}
