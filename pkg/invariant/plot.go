package invariant

import(
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

// PlotSweep draws entropy against angle, marking the minimum.
func PlotSweep(sr SweepResult, w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if len(sr.Angles) == 0 {
		return dc.Image()
	}

	maxE := 0.0
	for _, ae := range sr.Angles {
		if ae.Entropy > maxE { maxE = ae.Entropy }
	}
	if maxE == 0 { maxE = 1 }

	margin := 40.0
	pw, ph := float64(w) - 2*margin, float64(h) - 2*margin
	toX := func(theta float64) float64 { return margin + pw * theta / math.Pi }
	toY := func(e float64) float64 { return margin + ph * (1 - e/maxE) }

	// axes
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin, margin, margin+ph)
	dc.DrawLine(margin, margin+ph, margin+pw, margin+ph)
	dc.Stroke()
	dc.DrawStringAnchored("0", margin, margin+ph+15, 0.5, 0.5)
	dc.DrawStringAnchored("180", margin+pw, margin+ph+15, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.2f", maxE), margin-20, margin, 0.5, 0.5)

	dc.SetRGB(0, 0, 0.8)
	dc.SetLineWidth(2)
	for i, ae := range sr.Angles {
		if i == 0 {
			dc.MoveTo(toX(ae.Angle), toY(ae.Entropy))
		} else {
			dc.LineTo(toX(ae.Angle), toY(ae.Entropy))
		}
	}
	dc.Stroke()

	dc.SetRGB(0.8, 0, 0)
	dc.DrawCircle(toX(sr.MinAngle), toY(sr.MinEntropy), 4)
	dc.Fill()
	dc.DrawStringAnchored(sr.String(), float64(w)/2, margin/2, 0.5, 0.5)

	return dc.Image()
}
