// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.25
//

package gopvt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSolveLSSquareSystem(t *testing.T) {
	G := mat.NewDense(2, 2, []float64{
		2, 0,
		0, 4,
	})
	dr := mat.NewVecDense(2, []float64{2, 8})
	W := mat.NewDiagDense(2, []float64{1, 1})

	x, err := SolveLS(G, dr, W)
	if err != nil {
		t.Fatalf("SolveLS: %v", err)
	}
	assert.InDelta(t, 1.0, x.AtVec(0), 1e-12)
	assert.InDelta(t, 2.0, x.AtVec(1), 1e-12)
}

func TestSolveLSOverdetermined(t *testing.T) {
	// Three consistent measurements of x = (3, -1); the residual is zero so
	// the least squares solution is exact.
	G := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	dr := mat.NewVecDense(3, []float64{3, -1, 2})
	W := mat.NewDiagDense(3, []float64{1, 1, 1})

	x, err := SolveLS(G, dr, W)
	if err != nil {
		t.Fatalf("SolveLS: %v", err)
	}
	assert.InDelta(t, 3.0, x.AtVec(0), 1e-12)
	assert.InDelta(t, -1.0, x.AtVec(1), 1e-12)
}

func TestSolveLSZeroWeightDropsRow(t *testing.T) {
	// The third row contradicts the others but carries zero weight
	G := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	dr := mat.NewVecDense(3, []float64{3, -1, 100})
	W := mat.NewDiagDense(3, []float64{1, 1, 0})

	x, err := SolveLS(G, dr, W)
	if err != nil {
		t.Fatalf("SolveLS: %v", err)
	}
	assert.InDelta(t, 3.0, x.AtVec(0), 1e-9)
	assert.InDelta(t, -1.0, x.AtVec(1), 1e-9)
}

func TestSolveLSSingular(t *testing.T) {
	G := mat.NewDense(2, 2, []float64{
		1, 1,
		1, 1,
	})
	dr := mat.NewVecDense(2, []float64{1, 2})
	W := mat.NewDiagDense(2, []float64{1, 1})

	if _, err := SolveLS(G, dr, W); err == nil {
		t.Fatal("expected an error for a singular system")
	}
}

func TestGramInverse(t *testing.T) {
	G := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 2,
		0, 0,
	})
	q, err := GramInverse(G)
	if err != nil {
		t.Fatalf("GramInverse: %v", err)
	}
	// G^T G = diag(1, 4), so the inverse is diag(1, 0.25)
	assert.InDelta(t, 1.0, q.At(0, 0), 1e-12)
	assert.InDelta(t, 0.25, q.At(1, 1), 1e-12)
	assert.InDelta(t, 0.0, q.At(0, 1), 1e-12)
}

func TestGramInverseSingular(t *testing.T) {
	G := mat.NewDense(3, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
	})
	if _, err := GramInverse(G); err == nil {
		t.Fatal("expected an error for a rank deficient design")
	}
}
