package container

import "math"

// 无法查询像素密度时假定 96 dpi，即 1pt = 1.333px。
const fallbackPxPerPt = 1.333

// Window is the platform window the container renders into. It is only
// queried for its pixel density.
type Window interface {
	// DPI returns the display density in pixels per inch, or false when the
	// platform cannot report it.
	DPI() (float64, bool)
}

// FixedDPI is a Window with a constant density.
type FixedDPI float64

func (d FixedDPI) DPI() (float64, bool) { return float64(d), d > 0 }

// PtToPx converts typographic points to device pixels for win. A nil window
// or one without a density uses the 96 dpi fallback.
func PtToPx(pt int, win Window) int {
	if win != nil {
		if dpi, ok := win.DPI(); ok && dpi > 0 {
			return int(math.Round(float64(pt) * dpi / 72.0))
		}
	}
	return int(math.Round(float64(pt) * fallbackPxPerPt))
}

// windowDPI returns the density of win or the fallback density.
func windowDPI(win Window) float64 {
	if win != nil {
		if dpi, ok := win.DPI(); ok && dpi > 0 {
			return dpi
		}
	}
	return 96
}
