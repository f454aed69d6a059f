package layout

import "math"

// This file converts physical paper constants into device pixels.

const (
	// pointsPerPixelBase maps the nominal point sizes used by receipt
	// templates onto pixel heights at the target DPI. It is not the
	// 72pt/inch convention; templates were tuned against this factor.
	pointsPerPixelBase = 54.0
	// pitchBase is the conventional 72 units per inch used for fixed line pitch.
	pitchBase = 72.0
	// inchesPerMeter converts DPI into pixels per meter (100 / 2.54).
	inchesPerMeter = 100 / 2.54
)

// PointsToPixels returns the pixel scale of a font given in receipt points.
func PointsToPixels(sizePt, dpi float64) float64 {
	return sizePt * dpi / pointsPerPixelBase
}

// LinePitchPx returns the pixel distance of a nominal line height.
func LinePitchPx(nominalLineHeight, dpi float64) float64 {
	return nominalLineHeight * dpi / pitchBase
}

// CanvasWidthPx returns the full canvas width for a paper roll.
func CanvasWidthPx(paperWidthInches, dpi float64) int {
	return int(math.Floor(paperWidthInches * dpi))
}

// PrintableWidthPx removes the margin reserved by the print mechanism.
func PrintableWidthPx(canvasWidthPx, reservedMarginPx int) int {
	return canvasWidthPx - reservedMarginPx
}

// PixelsPerMeter converts DPI into the resolution unit used by DIB headers.
func PixelsPerMeter(dpi float64) int32 {
	return int32(math.Round(dpi * inchesPerMeter))
}

// roundPx rounds a fractional pixel distance to the nearest whole pixel.
func roundPx(v float64) int { return int(math.Round(v)) }
