// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.25
//

package gopvt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGST(t *testing.T) {
	assert.Equal(t, 0.0, GST(0, 0))
	assert.Equal(t, 604800.0, GST(1, 0))
	assert.Equal(t, 1200*604800.0+345600.0, GST(1200, 345600))
}

func TestGSTToUTCLeapSeconds(t *testing.T) {
	gst := GST(1200, 345600)
	assert.Equal(t, gst-LS, GSTToUTC(gst, 1200))
}

func TestUTCToTimeEpoch(t *testing.T) {
	// System time starts 1999/8/22 00:00:00 UTC
	got := UTCToTime(0)
	want := time.Date(1999, 8, 22, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("epoch: got %v, want %v", got, want)
	}

	got = UTCToTime(90000.5)
	want = time.Date(1999, 8, 23, 1, 0, 0, 500000000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("offset: got %v, want %v", got, want)
	}
}

func TestGTimeLess(t *testing.T) {
	a := GTime{Week: 1200, Sec: 100.2}
	b := GTime{Week: 1200, Sec: 100.4}
	assert.True(t, a.Less(b, false))
	assert.False(t, a.Less(b, true)) // both round to 100
	c := GTime{Week: 1201, Sec: 0}
	assert.True(t, a.Less(c, false))
}

func TestGTimeDivisible(t *testing.T) {
	g := GTime{Week: 1200, Sec: 30.0001}
	assert.True(t, g.Divisible(30))
	assert.False(t, g.Divisible(7))
}
