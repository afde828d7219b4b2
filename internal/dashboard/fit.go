package dashboard

import (
	"math"

	"github.com/webyes/a11ycheck/report"
)

// Fit describes how the display frame should render a device profile inside
// the space left next to the side panel.
type Fit struct {
	DeviceWidth  int
	DeviceHeight int
	ScaledWidth  int
	ScaledHeight int
	Scale        float64
}

// FitViewport computes frame dimensions and scale for a profile within the
// given available space. The desktop profile fills the space at scale 1.
// Other profiles render at native size when both dimensions fit; otherwise
// they are uniformly scaled down so the whole simulated frame stays visible,
// with scaled dimensions floored to whole pixels. The CSS transform is
// anchored top-centre by the page-side runtime.
func FitViewport(p report.DeviceProfile, availWidth, availHeight int) Fit {
	if p.Name == "desktop" {
		return Fit{
			DeviceWidth:  availWidth,
			DeviceHeight: availHeight,
			ScaledWidth:  availWidth,
			ScaledHeight: availHeight,
			Scale:        1,
		}
	}

	if p.Width <= availWidth && p.Height <= availHeight {
		return Fit{
			DeviceWidth:  p.Width,
			DeviceHeight: p.Height,
			ScaledWidth:  p.Width,
			ScaledHeight: p.Height,
			Scale:        1,
		}
	}

	scale := math.Min(
		float64(availWidth)/float64(p.Width),
		float64(availHeight)/float64(p.Height),
	)
	return Fit{
		DeviceWidth:  p.Width,
		DeviceHeight: p.Height,
		ScaledWidth:  int(math.Floor(float64(p.Width) * scale)),
		ScaledHeight: int(math.Floor(float64(p.Height) * scale)),
		Scale:        scale,
	}
}
