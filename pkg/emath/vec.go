package emath

// Small fixed-size vectors, used for colors and plane directions

import(
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Use local types so we can hang methods off them
type Vec2 f64.Vec2
type Vec3 f64.Vec3

// UnitVec2 is the direction at angle theta (radians) from the x axis.
func UnitVec2(theta float64) Vec2 { return Vec2{math.Cos(theta), math.Sin(theta)} }

func (a Vec2)Dot(b Vec2) float64  { return a[0]*b[0] + a[1]*b[1] }
func (a Vec2)Scale(s float64) Vec2 { return Vec2{a[0]*s, a[1]*s} }
func (a Vec2)Add(b Vec2) Vec2      { return Vec2{a[0]+b[0], a[1]+b[1]} }

// Perp rotates the vector by +90 degrees.
func (a Vec2)Perp() Vec2 { return Vec2{-a[1], a[0]} }

func (v Vec2)String() string {
	return fmt.Sprintf("[%12.10f, %12.10f]", v[0], v[1])
}

func (a Vec3)Dot(b Vec3) float64   { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func (a Vec3)Norm() float64        { return math.Sqrt(a.Dot(a)) }
func (a Vec3)Scale(s float64) Vec3 { return Vec3{a[0]*s, a[1]*s, a[2]*s} }
func (a Vec3)Sum() float64         { return a[0] + a[1] + a[2] }

// Normalized returns the vector scaled to unit length; the zero vector stays zero.
func (a Vec3)Normalized() Vec3 {
	n := a.Norm()
	if n == 0 {
		return a
	}
	return a.Scale(1.0/n)
}

func (v Vec3)String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}
