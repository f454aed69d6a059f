package dib

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/ByLCY/slip/layout"
)

// Transfer 是一次 DIB 传输所需的全部参数：信息头、像素数据与源/目标矩形。
// 源像素按原尺寸提供，缩放只作用于目标矩形，由接收设备完成。
type Transfer struct {
	Header InfoHeader
	// Pixels 为 BGRA 排列、自上而下的像素，每行 Stride 字节。
	Pixels []byte
	Stride int
	Src    image.Rectangle
	Dst    image.Rectangle
}

// NewTransfer 从画布生成传输参数；printScale 为可打印宽度与画布宽度之比。
func NewTransfer(img *image.RGBA, dpi, printScale float64) (Transfer, error) {
	if img == nil {
		return Transfer{}, fmt.Errorf("dib: 位图为空")
	}
	if dpi <= 0 {
		return Transfer{}, fmt.Errorf("dib: DPI %g 必须为正数", dpi)
	}
	if printScale <= 0 || math.IsNaN(printScale) || math.IsInf(printScale, 0) {
		return Transfer{}, fmt.Errorf("dib: 打印缩放比 %g 无效", printScale)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return Transfer{}, fmt.Errorf("dib: 位图尺寸 %dx%d 无效", w, h)
	}
	stride := w * 4
	pixels := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
		dst := pixels[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			s := src[x*4 : x*4+4]
			d := dst[x*4 : x*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
		}
	}
	ppm := layout.PixelsPerMeter(dpi)
	return Transfer{
		Header: InfoHeader{
			Size:          InfoHeaderSize,
			Width:         int32(w),
			Height:        -int32(h),
			Planes:        1,
			BitCount:      BitCount,
			Compression:   CompressionRGB,
			SizeImage:     uint32(len(pixels)),
			XPelsPerMeter: ppm,
			YPelsPerMeter: ppm,
		},
		Pixels: pixels,
		Stride: stride,
		Src:    image.Rect(0, 0, w, h),
		Dst:    image.Rect(0, 0, int(math.Round(float64(w)*printScale)), int(math.Round(float64(h)*printScale))),
	}, nil
}

// Luma 返回 (x, y) 处像素的亮度（0 黑 ~ 255 白），透明像素视为白色。
func (t Transfer) Luma(x, y int) uint8 {
	p := t.Pixels[y*t.Stride+x*4:]
	b, g, r, a := uint32(p[0]), uint32(p[1]), uint32(p[2]), uint32(p[3])
	if a == 0 {
		return 0xff
	}
	// ITU-R BT.601, integer form.
	return uint8((299*r + 587*g + 114*b) / 1000)
}

// WriteBMP 以 BMP 文件格式（文件头 + 信息头 + 像素）写出传输内容，便于离线查看。
func (t Transfer) WriteBMP(w io.Writer) (int64, error) {
	info, err := t.Header.MarshalBinary()
	if err != nil {
		return 0, err
	}
	fh := fileHeader{
		Type:    [2]byte{'B', 'M'},
		Size:    uint32(FileHeaderSize + len(info) + len(t.Pixels)),
		OffBits: uint32(FileHeaderSize + len(info)),
	}
	if err := binary.Write(w, binary.LittleEndian, fh); err != nil {
		return 0, err
	}
	n := int64(FileHeaderSize)
	m, err := w.Write(info)
	n += int64(m)
	if err != nil {
		return n, err
	}
	m, err = w.Write(t.Pixels)
	n += int64(m)
	return n, err
}
