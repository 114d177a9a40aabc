package scene

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var whitePixel *ebiten.Image

// WhitePixel returns a shared 1x1 white image. Panels are drawn by scaling
// and tinting it.
func WhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// geoM converts an affine [a, b, c, d, tx, ty] to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// tint scales a draw by a straight-alpha color and an opacity.
func tint(op *ebiten.DrawImageOptions, c Color, alpha float64) {
	a := c.A * alpha
	op.ColorScale.Scale(float32(c.R*a), float32(c.G*a), float32(c.B*a), float32(a))
}

func (s *Scene) render(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}

	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.drawNode(screen, s.root, &stats)

	if s.showFPS {
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()), 4, 4)
	}

	if s.debug {
		stats.drawTime = time.Since(t0)
		s.debugLog(stats)
	}
}

// drawNode draws n and its children in painter order. Hidden or fully
// transparent subtrees are skipped.
func (s *Scene) drawNode(dst *ebiten.Image, n *Node, stats *debugStats) {
	if !n.Visible || n.disposed || n.worldAlpha <= 0 {
		return
	}
	stats.nodes++

	switch n.Kind {
	case KindPanel, KindButton:
		if n.Width > 0 && n.Height > 0 && n.Color.A > 0 {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(n.Width, n.Height)
			op.GeoM.Concat(geoM(n.worldTransform))
			tint(op, n.Color, n.worldAlpha)
			dst.DrawImage(WhitePixel(), op)
			stats.drawCalls++
		}
	}

	if n.Text != "" && (n.Kind == KindLabel || n.Kind == KindButton) {
		s.drawText(dst, n)
		stats.drawCalls++
	}

	for _, child := range n.children {
		s.drawNode(dst, child, stats)
	}
}

// drawText renders the node's text through a cached image so it can be
// transformed and tinted like any other draw. Buttons center their text.
func (s *Scene) drawText(dst *ebiten.Image, n *Node) {
	tw, th := textSize(n.Text)
	if n.textImage == nil || n.textDrawn != n.Text {
		if n.textImage != nil {
			n.textImage.Deallocate()
		}
		n.textImage = ebiten.NewImage(max(1, int(tw)), max(1, int(th)))
		ebitenutil.DebugPrint(n.textImage, n.Text)
		n.textDrawn = n.Text
	}

	op := &ebiten.DrawImageOptions{}
	if n.Kind == KindButton {
		op.GeoM.Translate((n.Width-tw)/2, (n.Height-th)/2)
	}
	op.GeoM.Concat(geoM(n.worldTransform))
	tint(op, n.TextColor, n.worldAlpha)
	dst.DrawImage(n.textImage, op)
}
