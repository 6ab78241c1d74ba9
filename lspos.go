// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.21
//

// Implements the iterative least squares position and clock solve from
// pseudorange observations, based on K.Borre's Matlab receiver.

package gopvt

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Calculation constants for the position solve
const (
	lsMaxIter   = 10   // Maximum number of Gauss-Newton iterations
	lsConvTol   = 1e-4 // Convergence threshold on the correction norm [m]
	lsTropDelay = 0.0  // Tropospheric delay [m]. No tropospheric model is applied.
)

// LSSolution holds the result of one least squares position solve.
type LSSolution struct {
	Pos [4]float64 // Receiver ECEF X, Y, Z [m] and clock bias [m]
	Cov *mat.Dense // Error covariance proxy (A^T A)^-1, nil when singular
	Az  []float64  // Per-satellite azimuth [deg], from the last iteration
	El  []float64  // Per-satellite elevation [deg]
	Dis []float64  // Per-satellite range [m]
}

// LeastSquarePos computes the weighted least squares position solution.
//
// satpos holds the satellites' raw ECEF positions, obs the corrected
// pseudorange measurement to each satellite [m], and w the diagonal of the
// weight matrix (0 disables a satellite without shrinking the system).
//
// The solve is Gauss-Newton with a fixed iteration cap: each iteration
// rotates the satellite positions for Earth rotation during signal transit,
// linearizes the range equations around the current estimate, and solves the
// weighted system for a correction. Iteration stops early when the correction
// norm falls below lsConvTol; hitting the cap is not an error and the last
// estimate is returned.
func LeastSquarePos(satpos []PosXYZ, obs []float64, w []float64) (*LSSolution, error) {

	nSats := len(satpos)
	sol := &LSSolution{
		Az:  make([]float64, nSats),
		El:  make([]float64, nSats),
		Dis: make([]float64, nSats),
	}

	A := mat.NewDense(nSats, 4, nil)
	omc := mat.NewVecDense(nSats, nil)
	W := mat.NewDiagDense(nSats, w)

	var pos [4]float64

	for iter := 0; iter < lsMaxIter; iter++ {
		for i := 0; i < nSats; i++ {
			var rotX PosXYZ
			if iter == 0 {
				// First iteration: raw satellite position, zero estimate
				rotX = satpos[i]
			} else {
				// Travel time from the current estimate to the raw position
				rho2 := SQ(satpos[i].X-pos[0]) + SQ(satpos[i].Y-pos[1]) + SQ(satpos[i].Z-pos[2])
				travelTime := math.Sqrt(rho2) / C

				// Correct the satellite position for Earth rotation
				rotX = RotateSatellite(travelTime, satpos[i])

				// Direction of arrival and range, kept for reporting
				origin := PosXYZ{X: pos[0], Y: pos[1], Z: pos[2]}
				sol.Az[i], sol.El[i], sol.Dis[i] = Topocent(origin, rotX.Sub(origin))
			}

			// Observed minus computed pseudorange
			dx := rotX.X - pos[0]
			dy := rotX.Y - pos[1]
			dz := rotX.Z - pos[2]
			rng := math.Sqrt(dx*dx + dy*dy + dz*dz)
			omc.SetVec(i, obs[i]-rng-pos[3]-lsTropDelay)

			// Design matrix row. The line of sight components are normalized
			// by the measured pseudorange, not the geometric range, for
			// numerical parity with the reference algorithm.
			A.Set(i, 0, -dx/obs[i])
			A.Set(i, 1, -dy/obs[i])
			A.Set(i, 2, -dz/obs[i])
			A.Set(i, 3, 1.0)
		}

		if DBG_ >= 4 {
			PrintA("A=\n")
			PrintMat(A)
			PrintA("omc=\n")
			PrintMat(omc)
		}

		x, err := SolveLS(A, omc, W)
		if err != nil {
			return nil, err
		}

		for j := 0; j < 4; j++ {
			pos[j] += x.AtVec(j)
		}

		if mat.Norm(x, 2) < lsConvTol {
			break // converged (err < 0.1 cm)
		}
	}

	sol.Pos = pos

	// Error covariance proxy for the DOP computation. A singular design
	// leaves Cov nil; downstream consumers substitute their sentinel.
	cov, err := GramInverse(A)
	if err != nil {
		PrintD(2, "\tcovariance proxy is singular: %s\n", err.Error())
		cov = nil
	}
	sol.Cov = cov

	return sol, nil
}
