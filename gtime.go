// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.12
//

package gopvt

import (
	"math"
	"time"
)

type GTime struct {
	Week int
	Sec  float64
}

func (p *GTime) Less(b GTime, roundSec bool) bool {
	if p.Week == b.Week {
		if roundSec {
			return math.Round(p.Sec) < math.Round(b.Sec)
		} else {
			return p.Sec < b.Sec
		}
	} else {
		return p.Week < b.Week
	}
}

func (p *GTime) Divisible(sec int) bool {
	return int(math.Round(p.Sec))%sec == 0
}

// Galileo System Time from week number and time of week [s]
func GST(week int, tow float64) float64 {
	return float64(week)*604800.0 + tow
}

// UTCConverter maps a Galileo System Time and week number to UTC seconds
// counted from the GST start epoch.
type UTCConverter func(gst float64, week int) float64

// GSTToUTC is the default UTCConverter. It applies the constant leap second
// offset only; the broadcast UTC model (A0/A1) is supplied by the navigation
// message collaborator when available.
func GSTToUTC(gst float64, week int) float64 {
	return gst - LS
}

// UTCToTime converts UTC seconds since the GST start epoch
// (1999/8/22 00:00:00, ICD sec 5.1.2) to wall-clock time.
func UTCToTime(utc float64) time.Time {
	epoch := time.Date(1999, 8, 22, 0, 0, 0, 0, time.UTC)
	i := int64(math.Trunc(utc))
	n := int64((utc - float64(i)) * 1e9)
	return epoch.Add(time.Duration(i)*time.Second + time.Duration(n)*time.Nanosecond)
}
