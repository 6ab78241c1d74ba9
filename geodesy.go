// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.19
//

// Coordinate frame conversions used by the positioning solver: ECEF to
// geodetic, ECEF to topocentric, and the Earth rotation correction applied to
// satellite positions during signal transit.

package gopvt

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Iteration caps for the geodetic conversions. Best-effort bounds: on
// non-convergence the last estimate is returned, not an error.
const (
	cart2geoMaxIter = 100
	togeodMaxIter   = 10
)

// RotateSatellite returns the satellite ECEF coordinates rotated about the Z
// axis by the angle the Earth turns during the signal travel time [s].
func RotateSatellite(travelTime float64, sat PosXYZ) PosXYZ {
	omegatau := OMGe * travelTime
	sino := math.Sin(omegatau)
	coso := math.Cos(omegatau)
	return PosXYZ{
		X: coso*sat.X + sino*sat.Y,
		Y: -sino*sat.X + coso*sat.Y,
		Z: sat.Z,
	}
}

// Cart2Geo converts ECEF coordinates to a geodetic position on the reference
// ellipsoid selected by index (0-4, see const.go). Latitude and height are
// refined by fixed-point iteration until the height update falls below
// 1e-12 m or the iteration cap is hit.
func Cart2Geo(x, y, z float64, ellipsoid int) GeoPos {
	a := ellipsoidA[ellipsoid]
	f := ellipsoidF[ellipsoid]

	lambda := math.Atan2(y, x)
	ex2 := (2 - f) * f / ((1 - f) * (1 - f))
	c := a * math.Sqrt(1+ex2)
	p := math.Sqrt(x*x + y*y)
	phi := math.Atan(z / (p * (1 - (2-f)*f)))

	h := 0.1
	oldh := 0.0
	iterations := 0
	for math.Abs(h-oldh) > 1.0e-12 {
		oldh = h
		n := c / math.Sqrt(1+ex2*SQ(math.Cos(phi)))
		phi = math.Atan(z / (p * (1 - (2-f)*f*n/(n+h))))
		h = p/math.Cos(phi) - n
		iterations++
		if iterations > cart2geoMaxIter {
			PrintD(1, "Failed to approximate h with desired precision. h-oldh= %g\n", h-oldh)
			break
		}
	}
	return GeoPos{
		Lat: phi * 180.0 / PI,
		Lon: lambda * 180.0 / PI,
		Hei: h,
	}
}

// ToGeod calculates geodetic coordinates from Cartesian X,Y,Z given the
// reference ellipsoid semi-major axis a and inverse flattening finv.
// Latitude and longitude are returned in decimal degrees, longitude in
// [0, 360), height in the units of the inputs.
//
// Based on a Matlab function by Kai Borre.
func ToGeod(a, finv, x, y, z float64) (dphi, dlambda, h float64) {
	const tolsq = 1.0e-10 // tolerance to accept convergence
	rtd := 180.0 / PI

	// compute square of eccentricity
	var esq float64
	if finv < 1.0e-20 {
		esq = 0
	} else {
		esq = (2 - 1/finv) / finv
	}

	// direct calculation of longitude; P is distance from spin axis
	p := math.Sqrt(x*x + y*y)
	if p > 1.0e-20 {
		dlambda = math.Atan2(y, x) * rtd
	}
	if dlambda < 0 {
		dlambda += 360.0
	}

	// r is distance from origin
	r := math.Sqrt(p*p + z*z)
	var sinphi float64
	if r > 1.0e-20 {
		sinphi = z / r
	}
	dphi = math.Asin(sinphi)

	if r < 1.0e-20 {
		return 0, dlambda, 0
	}

	// initial height: distance from origin minus approximate distance from
	// origin to the ellipsoid surface
	h = r - a*(1-sinphi*sinphi/finv)

	oneesq := 1 - esq
	for i := 0; i < togeodMaxIter; i++ {
		sinphi = math.Sin(dphi)
		cosphi := math.Cos(dphi)

		// radius of curvature in prime vertical direction
		nphi := a / math.Sqrt(1-esq*sinphi*sinphi)

		// residuals in P and Z
		dp := p - (nphi+h)*cosphi
		dz := z - (nphi*oneesq+h)*sinphi

		h += sinphi*dz + cosphi*dp
		dphi += (cosphi*dz - sinphi*dp) / (nphi + h)

		if dp*dp+dz*dz < tolsq {
			break
		}
		if i == togeodMaxIter-1 {
			PrintD(1, "The computation of geodetic coordinates did not converge\n")
		}
	}
	dphi *= rtd
	return
}

// Topocent transforms the vector dx into the topocentric coordinate system
// with origin at x. It returns the azimuth from north positive clockwise in
// degrees, the elevation angle in degrees, and the vector length in the units
// of the input.
//
// Based on a Matlab function by Kai Borre.
func Topocent(x, dx PosXYZ) (az, el, dist float64) {
	phi, lambda, _ := ToGeod(6378137.0, 298.257223563, x.X, x.Y, x.Z) // WGS-84

	f := enuRotation(phi, lambda)

	d := mat.NewVecDense(3, []float64{dx.X, dx.Y, dx.Z})
	var local mat.VecDense
	local.MulVec(f.T(), d)

	e := local.AtVec(0)
	n := local.AtVec(1)
	u := local.AtVec(2)

	horDis := math.Sqrt(e*e + n*n)
	if horDis < 1.0e-20 {
		az = 0
		el = 90
	} else {
		az = ToDeg(math.Atan2(e, n))
		el = ToDeg(math.Atan2(u, horDis))
	}
	if az < 0 {
		az += 360.0
	}

	dist = dx.Norm()
	return
}

// enuRotation builds the ECEF-to-ENU rotation matrix for a geodetic latitude
// and longitude in degrees. The columns are the local East, North, and Up
// unit vectors, so F^T projects an ECEF delta into ENU.
// ref: http://www.navipedia.net/index.php/Transformations_between_ECEF_and_ENU_coordinates
func enuRotation(latDeg, lonDeg float64) *mat.Dense {
	sl := math.Sin(ToRad(lonDeg))
	cl := math.Cos(ToRad(lonDeg))
	sb := math.Sin(ToRad(latDeg))
	cb := math.Cos(ToRad(latDeg))

	return mat.NewDense(3, 3, []float64{
		-sl, -sb * cl, cb * cl,
		cl, -sb * sl, cb * sl,
		0, cb, sb,
	})
}
