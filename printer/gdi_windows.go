//go:build windows

package printer

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ByLCY/slip/dib"
)

const (
	dibRGBColors = 0
	srcCopy      = 0x00CC0020
)

var (
	gdi32             = windows.NewLazySystemDLL("gdi32.dll")
	procCreateDCW     = gdi32.NewProc("CreateDCW")
	procDeleteDC      = gdi32.NewProc("DeleteDC")
	procStartDocW     = gdi32.NewProc("StartDocW")
	procEndDoc        = gdi32.NewProc("EndDoc")
	procAbortDoc      = gdi32.NewProc("AbortDoc")
	procStartPage     = gdi32.NewProc("StartPage")
	procEndPage       = gdi32.NewProc("EndPage")
	procStretchDIBits = gdi32.NewProc("StretchDIBits")
)

// docInfo mirrors DOCINFOW.
type docInfo struct {
	size     int32
	docName  *uint16
	output   *uint16
	datatype *uint16
	fwType   uint32
}

// bitmapInfo mirrors BITMAPINFO with a single (unused) RGBQUAD.
type bitmapInfo struct {
	header dib.InfoHeader
	colors [1]uint32
}

// Transfer implements Transport.
func (g *GDI) Transfer(t dib.Transfer) error {
	if len(t.Pixels) == 0 {
		return fmt.Errorf("%w: 像素数据为空", ErrTransferFailure)
	}
	name, err := windows.UTF16PtrFromString(g.printer)
	if err != nil {
		return fmt.Errorf("%w: 打印机名称无效: %v", ErrTransferFailure, err)
	}
	docName, err := windows.UTF16PtrFromString(g.docName)
	if err != nil {
		return fmt.Errorf("%w: 文档名无效: %v", ErrTransferFailure, err)
	}

	hdc, _, callErr := procCreateDCW.Call(0, uintptr(unsafe.Pointer(name)), 0, 0)
	if hdc == 0 {
		return fmt.Errorf("%w: 无法打开打印机 %q: %v", ErrTransferFailure, g.printer, callErr)
	}
	defer procDeleteDC.Call(hdc)

	di := docInfo{size: int32(unsafe.Sizeof(docInfo{})), docName: docName}
	if r, _, callErr := procStartDocW.Call(hdc, uintptr(unsafe.Pointer(&di))); int32(r) <= 0 {
		return fmt.Errorf("%w: StartDocW: %v", ErrTransferFailure, callErr)
	}
	if r, _, callErr := procStartPage.Call(hdc); int32(r) <= 0 {
		procAbortDoc.Call(hdc)
		return fmt.Errorf("%w: StartPage: %v", ErrTransferFailure, callErr)
	}

	bmi := bitmapInfo{header: t.Header}
	lines, _, callErr := procStretchDIBits.Call(hdc,
		uintptr(t.Dst.Min.X), uintptr(t.Dst.Min.Y), uintptr(t.Dst.Dx()), uintptr(t.Dst.Dy()),
		uintptr(t.Src.Min.X), uintptr(t.Src.Min.Y), uintptr(t.Src.Dx()), uintptr(t.Src.Dy()),
		uintptr(unsafe.Pointer(&t.Pixels[0])),
		uintptr(unsafe.Pointer(&bmi)),
		dibRGBColors, srcCopy,
	)
	if int32(lines) <= 0 {
		procAbortDoc.Call(hdc)
		return fmt.Errorf("%w: StretchDIBits: %v", ErrTransferFailure, callErr)
	}

	if r, _, callErr := procEndPage.Call(hdc); int32(r) <= 0 {
		procAbortDoc.Call(hdc)
		return fmt.Errorf("%w: EndPage: %v", ErrTransferFailure, callErr)
	}
	if r, _, callErr := procEndDoc.Call(hdc); int32(r) <= 0 {
		return fmt.Errorf("%w: EndDoc: %v", ErrTransferFailure, callErr)
	}
	return nil
}
