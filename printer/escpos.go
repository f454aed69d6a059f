package printer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/ByLCY/slip/dib"
)

const (
	// bandRows bounds one GS v 0 command; many printers drop larger images.
	bandRows = 256
	// inkThreshold: pixels darker than this become printed dots.
	inkThreshold = 128
)

// ESCPOSOptions configures raster output.
type ESCPOSOptions struct {
	MaxDots int  // crop each row to this many dots; 0 keeps the full width
	Cut     bool // partial cut after feeding
}

// ESCPOS writes the bitmap as ESC/POS "GS v 0" raster bands.
// The destination rectangle is ignored: the raster is sent 1:1 and cropped,
// never resampled.
type ESCPOS struct {
	w    io.Writer
	path string
	opts ESCPOSOptions
}

// NewESCPOS writes raster commands to w.
func NewESCPOS(w io.Writer, opts ESCPOSOptions) *ESCPOS {
	return &ESCPOS{w: w, opts: opts}
}

// NewESCPOSDevice opens path (e.g. /dev/usb/lp0) for every transfer.
func NewESCPOSDevice(path string, opts ESCPOSOptions) *ESCPOS {
	return &ESCPOS{path: path, opts: opts}
}

// Transfer implements Transport.
func (p *ESCPOS) Transfer(t dib.Transfer) error {
	if p.w != nil {
		return p.write(p.w, t)
	}
	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("%w: 打开设备 %s 失败: %v", ErrTransferFailure, p.path, err)
	}
	if err := p.write(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailure, err)
	}
	return nil
}

func (p *ESCPOS) write(w io.Writer, t dib.Transfer) error {
	width := int(t.Header.Width)
	if p.opts.MaxDots > 0 && width > p.opts.MaxDots {
		width = p.opts.MaxDots
	}
	rows := t.Header.Rows()
	if width <= 0 || rows <= 0 {
		return fmt.Errorf("%w: 位图尺寸 %dx%d 无效", ErrTransferFailure, width, rows)
	}
	rowBytes := (width + 7) / 8

	bw := bufio.NewWriter(w)
	bw.Write([]byte{0x1b, 0x40}) // ESC @, initialize
	row := make([]byte, rowBytes)
	for top := 0; top < rows; top += bandRows {
		n := min(bandRows, rows-top)
		bw.Write([]byte{
			0x1d, 0x76, 0x30, 0x00, // GS v 0, normal density
			byte(rowBytes), byte(rowBytes >> 8),
			byte(n), byte(n >> 8),
		})
		for y := top; y < top+n; y++ {
			packRow(row, t, y, width)
			bw.Write(row)
		}
	}
	bw.Write([]byte{0x1b, 0x64, 0x04}) // ESC d 4, feed
	if p.opts.Cut {
		bw.Write([]byte{0x1d, 0x56, 0x01}) // GS V 1, partial cut
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: 写入设备失败: %v", ErrTransferFailure, err)
	}
	return nil
}

// packRow sets bit (7 - x%8) of byte x/8 for every dark pixel, MSB first.
func packRow(row []byte, t dib.Transfer, y, width int) {
	clear(row)
	for x := 0; x < width; x++ {
		if t.Luma(x, y) < inkThreshold {
			row[x/8] |= 0x80 >> (x % 8)
		}
	}
}
