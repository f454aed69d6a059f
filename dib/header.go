// Package dib prepares rendered receipts for device-independent bitmap
// transfer and writes debug copies of the canvas.
package dib

import (
	"bytes"
	"encoding/binary"
)

const (
	// InfoHeaderSize is sizeof(BITMAPINFOHEADER).
	InfoHeaderSize = 40
	// FileHeaderSize is sizeof(BITMAPFILEHEADER).
	FileHeaderSize = 14
	// BitCount is fixed: pixels are always packed as 32-bit BGRA.
	BitCount = 32
	// CompressionRGB is BI_RGB (uncompressed).
	CompressionRGB = 0
)

// InfoHeader mirrors BITMAPINFOHEADER field for field so it can be
// serialized with encoding/binary or handed to GDI as-is.
type InfoHeader struct {
	Size          uint32 // InfoHeaderSize
	Width         int32
	Height        int32 // negative: rows are stored top-down
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// TopDown reports whether the header describes top-down row order.
func (h InfoHeader) TopDown() bool { return h.Height < 0 }

// Rows returns the number of pixel rows regardless of orientation.
func (h InfoHeader) Rows() int {
	if h.Height < 0 {
		return int(-h.Height)
	}
	return int(h.Height)
}

// MarshalBinary encodes the header in little-endian wire order.
func (h InfoHeader) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(InfoHeaderSize)
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fileHeader mirrors BITMAPFILEHEADER.
type fileHeader struct {
	Type      [2]byte
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32
}
