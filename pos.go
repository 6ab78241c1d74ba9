// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.16
//

package gopvt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

//-------------------------------------------------------------------
// PosXYZ
//-------------------------------------------------------------------

type PosXYZ struct {
	X float64
	Y float64
	Z float64
}

func (pos *PosXYZ) Sub(b PosXYZ) PosXYZ {
	return PosXYZ{X: pos.X - b.X, Y: pos.Y - b.Y, Z: pos.Z - b.Z}
}

func (pos *PosXYZ) Norm() float64 {
	return math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
}

//-------------------------------------------------------------------
// GeoPos
//-------------------------------------------------------------------

// GeoPos is a geodetic position. Latitude and longitude are in decimal
// degrees, height in meters above the reference ellipsoid.
type GeoPos struct {
	Lat float64
	Lon float64
	Hei float64
}

// ToXYZ converts the geodetic position to ECEF coordinates on the selected
// reference ellipsoid.
func (g *GeoPos) ToXYZ(ellipsoid int) PosXYZ {
	a := ellipsoidA[ellipsoid]
	f := ellipsoidF[ellipsoid]
	e2 := f * (2 - f) // Squared eccentricity

	lat := ToRad(g.Lat)
	lon := ToRad(g.Lon)
	sinLat := math.Sin(lat)

	n := a / math.Sqrt(1-e2*sinLat*sinLat) // Radius of curvature in the prime vertical
	return PosXYZ{
		X: (n + g.Hei) * math.Cos(lat) * math.Cos(lon),
		Y: (n + g.Hei) * math.Cos(lat) * math.Sin(lon),
		Z: (n*(1-e2) + g.Hei) * sinLat,
	}
}

// Read from string ("lat lon height", degrees and meters)
func (g *GeoPos) Set(s string) error {
	var err error
	f := strings.Fields(s)
	if len(f) < 3 {
		return fmt.Errorf("expected \"lat lon height\", got %q", s)
	}
	g.Lat, err = strconv.ParseFloat(f[0], 64)
	if err != nil {
		return err
	}
	g.Lon, err = strconv.ParseFloat(f[1], 64)
	if err != nil {
		return err
	}
	g.Hei, err = strconv.ParseFloat(f[2], 64)
	if err != nil {
		return err
	}
	return nil
}

// Convert to string
func (g *GeoPos) String() string {
	return fmt.Sprintf("%.8f %.8f %.4f", g.Lat, g.Lon, g.Hei)
}
