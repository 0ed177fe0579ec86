// math/latlong.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

// EarthRadiusM is the mean radius of the spherical earth used for all
// lat-long to planar conversions, in meters.
const EarthRadiusM = 6371.0 * 1000.0

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (36.605100, -97.485600)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// AngleUnit specifies how an angle argument is to be interpreted.
type AngleUnit int

const (
	UnitRadians AngleUnit = iota
	UnitDegrees
)

// LatitudeCircleRadius returns the radius of the circle of constant
// latitude at the given latitude: Re*sin(pi/2 - |lat|). It goes to zero
// at the poles.
func LatitudeCircleRadius(lat float32, unit AngleUnit) float32 {
	l := float64(lat)
	if unit == UnitDegrees {
		l *= gomath.Pi / 180
	}
	return float32(EarthRadiusM * gomath.Sin(gomath.Pi/2-gomath.Abs(l)))
}

// legacyPi is the value of pi that the original corner-to-point
// conversion hard-coded. It is kept so that ground-location markers land
// where they always have; RangeRing and everything else use the real
// value.
// TODO: switch to gomath.Pi once output no longer needs to match plots
// made with the earlier tooling (shifts markers by ~0.1%).
const legacyPi = 3.145

// CornerToPoint returns the planar (x, y) offset in meters of point from
// the reference corner, with x east and y north. It is a local
// small-angle approximation: the east-west scale comes from the circle
// of constant latitude at the corner, so results degrade for large
// separations, near the poles, and across the antimeridian.
func CornerToPoint(corner, point Point2LL) [2]float32 {
	rc := float64(LatitudeCircleRadius(corner.Latitude(), UnitDegrees))
	dlat := float64(point.Latitude()) - float64(corner.Latitude())
	dlon := float64(point.Longitude()) - float64(corner.Longitude())

	y := (dlat / 360) * legacyPi * 2 * EarthRadiusM
	x := (dlon / 360) * legacyPi * 2 * rc
	return [2]float32{float32(x), float32(y)}
}

// RadarToCartesian converts a radar gate at the given slant range (meters),
// azimuth and elevation (degrees) to (x, y, z) meters relative to the
// radar, with x east, y north, and z height above the radar. Beam
// propagation follows the usual 4/3 effective earth radius model.
func RadarToCartesian(rangeM, azDeg, elDeg float32) [3]float32 {
	const re = 4. / 3. * EarthRadiusM
	r := float64(rangeM)
	el := float64(elDeg) * gomath.Pi / 180
	az := float64(azDeg) * gomath.Pi / 180

	z := gomath.Sqrt(r*r+re*re+2*r*re*gomath.Sin(el)) - re
	s := re * gomath.Asin(r*gomath.Cos(el)/(re+z))
	return [3]float32{float32(s * gomath.Sin(az)), float32(s * gomath.Cos(az)), float32(z)}
}
