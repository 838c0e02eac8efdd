package main

import "math"

// Point is a position on the battlefield
type Point struct {
	X, Y float64
}

// Segment is a line segment between two points
type Segment struct {
	A, B Point
}

// Rect is an axis-aligned rectangle with its origin at the minimum corner
type Rect struct {
	X, Y, W, H float64
}

// Polygon is an ordered vertex list. Polygons built by RotatedRectPolygon
// repeat the first vertex at the end.
type Polygon []Point

// CenteredRect returns the w×h rectangle centered on (cx, cy)
func CenteredRect(cx, cy, w, h float64) Rect {
	return Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}

// Center returns the rectangle's center point
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside r. The minimum edges are inclusive
// and the maximum edges exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

// cross2D returns the 2D cross product of vectors (b-a) and (c-a).
func cross2D(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// SegmentsIntersect reports whether two segments strictly cross each other.
// Collinear overlap and endpoints touching the other segment do not count.
func SegmentsIntersect(s1, s2 Segment) bool {
	d1 := cross2D(s1.A, s1.B, s2.A)
	d2 := cross2D(s1.A, s1.B, s2.B)
	d3 := cross2D(s2.A, s2.B, s1.A)
	d4 := cross2D(s2.A, s2.B, s1.B)
	return d1*d2 < 0 && d3*d4 < 0
}

// RotatedRectPolygon returns the corners of r rotated by angle about its own
// center, ordered NW, NE, SE, SW, followed by a repeat of NW.
func RotatedRectPolygon(r Rect, angle float64) Polygon {
	c := r.Center()
	cosA := math.Cos(angle)
	sinA := math.Sin(angle)
	corners := [4]Point{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X + r.W, r.Y + r.H},
		{r.X, r.Y + r.H},
	}
	poly := make(Polygon, 0, 5)
	for _, p := range corners {
		dx := p.X - c.X
		dy := p.Y - c.Y
		poly = append(poly, Point{
			X: c.X + dx*cosA - dy*sinA,
			Y: c.Y + dx*sinA + dy*cosA,
		})
	}
	return append(poly, poly[0])
}

// edges returns the closed edge list of a polygon whether or not the last
// vertex repeats the first.
func (p Polygon) edges() []Segment {
	n := len(p)
	if n > 1 && p[0] == p[n-1] {
		n--
	}
	if n < 2 {
		return nil
	}
	out := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Segment{A: p[i], B: p[(i+1)%n]})
	}
	return out
}

// onSegment reports whether p lies on s (within a tiny tolerance)
func onSegment(p Point, s Segment) bool {
	if math.Abs(cross2D(s.A, s.B, p)) > 1e-9 {
		return false
	}
	return p.X >= math.Min(s.A.X, s.B.X)-1e-9 && p.X <= math.Max(s.A.X, s.B.X)+1e-9 &&
		p.Y >= math.Min(s.A.Y, s.B.Y)-1e-9 && p.Y <= math.Max(s.A.Y, s.B.Y)+1e-9
}

// PointInPolygon reports whether p lies inside poly or on its boundary
func PointInPolygon(p Point, poly Polygon) bool {
	edges := poly.edges()
	if len(edges) == 0 {
		return false
	}
	inside := false
	for _, e := range edges {
		if onSegment(p, e) {
			return true
		}
		// Ray cast towards +X
		if (e.A.Y > p.Y) != (e.B.Y > p.Y) {
			x := e.A.X + (p.Y-e.A.Y)*(e.B.X-e.A.X)/(e.B.Y-e.A.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// PolygonsIntersect reports whether any edges of p1 and p2 cross, or a vertex
// of either polygon lies inside the other (full containment).
func PolygonsIntersect(p1, p2 Polygon) bool {
	e1 := p1.edges()
	e2 := p2.edges()
	for _, a := range e1 {
		for _, b := range e2 {
			if SegmentsIntersect(a, b) {
				return true
			}
		}
	}
	for _, v := range p1 {
		if PointInPolygon(v, p2) {
			return true
		}
	}
	for _, v := range p2 {
		if PointInPolygon(v, p1) {
			return true
		}
	}
	return false
}

// BoxesIntersect reports whether two axis-aligned rectangles overlap with a
// non-zero area. Empty rectangles never intersect.
func BoxesIntersect(r1, r2 Rect) bool {
	if r1.W <= 0 || r1.H <= 0 || r2.W <= 0 || r2.H <= 0 {
		return false
	}
	return r1.X < r2.X+r2.W && r2.X < r1.X+r1.W &&
		r1.Y < r2.Y+r2.H && r2.Y < r1.Y+r1.H
}

// SegmentIntersectsPolygon reports whether s crosses an edge of poly or has
// an endpoint inside it.
func SegmentIntersectsPolygon(poly Polygon, s Segment) bool {
	for _, e := range poly.edges() {
		if SegmentsIntersect(e, s) {
			return true
		}
	}
	return PointInPolygon(s.A, poly) || PointInPolygon(s.B, poly)
}
