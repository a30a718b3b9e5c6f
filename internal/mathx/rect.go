package mathx

import "github.com/go-gl/mathgl/mgl32"

// Rect is an axis-aligned rectangle, Min inclusive and Max exclusive.
type Rect struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

func RectMinMax(min, max mgl32.Vec2) Rect { return Rect{Min: min, Max: max} }

func RectCenterHalfDim(center, halfDim mgl32.Vec2) Rect {
	return Rect{Min: center.Sub(halfDim), Max: center.Add(halfDim)}
}

func RectCenterDim(center, dim mgl32.Vec2) Rect {
	return RectCenterHalfDim(center, dim.Mul(0.5))
}

func (r Rect) MinCorner() mgl32.Vec2 { return r.Min }
func (r Rect) MaxCorner() mgl32.Vec2 { return r.Max }
func (r Rect) Center() mgl32.Vec2    { return r.Min.Add(r.Max).Mul(0.5) }
func (r Rect) Dim() mgl32.Vec2       { return r.Max.Sub(r.Min) }

// AddRadius grows the rectangle by rx and ry on each side.
func (r Rect) AddRadius(rx, ry float32) Rect {
	return Rect{
		Min: mgl32.Vec2{r.Min.X() - rx, r.Min.Y() - ry},
		Max: mgl32.Vec2{r.Max.X() + rx, r.Max.Y() + ry},
	}
}

func (r Rect) Contains(p mgl32.Vec2) bool {
	return p.X() >= r.Min.X() && p.Y() >= r.Min.Y() &&
		p.X() < r.Max.X() && p.Y() < r.Max.Y()
}
