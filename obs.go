// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.21
//

package gopvt

// Obs is one satellite's pseudorange observation for one epoch, produced by
// the tracking/observables stage and consumed read-only here.
type Obs struct {
	PRN         int     // Satellite identifier
	Pseudorange float64 // Raw pseudorange [m]
	CN0         float64 // Carrier to noise ratio [dB-Hz]
	Valid       bool
}

// Ephemeris exposes the broadcast clock and position model for one satellite.
// Implementations are owned by the navigation message collaborator and are
// immutable per broadcast update.
type Ephemeris interface {
	// ClockDrift returns the satellite clock drift [s] at the transmit time.
	ClockDrift(txTime float64) float64
	// RelativisticCorrection returns the relativistic clock correction [s]
	// at the transmit time.
	RelativisticCorrection(txTime float64) float64
	// PositionAt returns the satellite ECEF position at the transmit time.
	PositionAt(txTime float64) PosXYZ
	// Week returns the broadcast week number.
	Week() int
	// SystemTime converts a week number and time of week to system time [s].
	SystemTime(week int, tow float64) float64
}

// KinematicEphemeris is a linear-motion, polynomial-clock Ephemeris used for
// replay files and synthetic scenarios. Orbit propagation from broadcast
// orbital elements belongs to the navigation message collaborator.
type KinematicEphemeris struct {
	PRN     int
	WeekNum int
	T0      float64 // Reference time of week [s]
	Pos     PosXYZ  // ECEF position at T0
	Vel     PosXYZ  // ECEF velocity [m/s]
	Af0     float64 // Clock bias [s]
	Af1     float64 // Clock drift [s/s]
	Af2     float64 // Clock drift rate [s/s^2]
	Rel     float64 // Relativistic correction [s]
}

func (e *KinematicEphemeris) ClockDrift(txTime float64) float64 {
	tk := txTime - e.T0
	return e.Af0 + e.Af1*tk + e.Af2*tk*tk
}

func (e *KinematicEphemeris) RelativisticCorrection(txTime float64) float64 {
	return e.Rel
}

func (e *KinematicEphemeris) PositionAt(txTime float64) PosXYZ {
	tk := txTime - e.T0
	return PosXYZ{
		X: e.Pos.X + e.Vel.X*tk,
		Y: e.Pos.Y + e.Vel.Y*tk,
		Z: e.Pos.Z + e.Vel.Z*tk,
	}
}

func (e *KinematicEphemeris) Week() int {
	return e.WeekNum
}

func (e *KinematicEphemeris) SystemTime(week int, tow float64) float64 {
	return GST(week, tow)
}
