package game

import "math"

// Clamp 将 v 限制在 [lo, hi] 区间内；NaN 取 lo
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize 归一化方向向量；长度接近 0 或非有限时返回零向量
func Normalize(x, y float64) (float64, float64) {
	mag := math.Hypot(x, y)
	if !(mag > 1e-6) || math.IsInf(mag, 0) {
		return 0, 0
	}
	return x / mag, y / mag
}

// Dist2 两点距离的平方（避免开方）
func Dist2(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}

// Rect 轴对齐矩形，坐标为左上角
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains 点是否落在矩形内（含边界）
func (r Rect) Contains(x, y float64) bool {
	return r.X <= x && x <= r.X+r.W && r.Y <= y && y <= r.Y+r.H
}

// Overlaps 两个矩形是否相交（接触也算）
func (r Rect) Overlaps(o Rect) bool {
	return !(r.X+r.W < o.X || r.X > o.X+o.W || r.Y+r.H < o.Y || r.Y > o.Y+o.H)
}

// Center 矩形中心点
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}
