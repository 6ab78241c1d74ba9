// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.19
//

package gopvt

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SolveLS solves the weighted observation equation (W G) dx = (W dr) in the
// least squares sense. The solve is a general linear solve; no explicit
// matrix inversion is performed. A singular system is reported as an error.
func SolveLS(G mat.Matrix, dr mat.Vector, W mat.Matrix) (dx mat.Vector, err error) {

	n1, m1 := G.Dims()
	n2, m2 := W.Dims()
	if n1 != n2 {
		return nil, fmt.Errorf("invalid matrix size. G(%d x %d), W(%d x %d)", n1, m1, n2, m2)
	}
	l1 := dr.Len()
	if l1 != m2 {
		return nil, fmt.Errorf("invalid matrix size. W(%d x %d), dr(%d x 1)", n2, m2, l1)
	}

	var WG mat.Dense
	WG.Mul(W, G)

	var wdr mat.VecDense
	wdr.MulVec(W, dr)

	var x mat.VecDense
	err = x.SolveVec(&WG, &wdr)
	if err != nil {
		return nil, err
	}
	dx = &x

	return
}

// GramInverse returns (G^T G)^-1, the error covariance proxy of an unweighted
// design matrix. A singular Gram matrix is reported as an error for the
// caller to substitute its own fallback.
func GramInverse(G mat.Matrix) (*mat.Dense, error) {
	var gtg mat.Dense
	gtg.Mul(G.T(), G)

	var inv mat.Dense
	if err := inv.Inverse(&gtg); err != nil {
		return nil, err
	}
	return &inv, nil
}
