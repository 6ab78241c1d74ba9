// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.24
//

// Per-epoch PVT driver: assembles the observation matrices from pseudoranges
// and broadcast ephemerides, runs the least squares solve, validates the fix,
// computes DOP, and smooths the output over time.

package gopvt

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// A fix whose height exceeds this bound indicates a divergent or
// ill-conditioned solve and is rejected as erratic.
const maxPlausibleHeight = 50000.0 // [m]

// PVT computes one position/velocity/time fix per navigation epoch.
//
// All state is mutated only by GetPVT. Epochs must be processed in time order
// from a single calling context; no internal locking is provided.
type PVT struct {
	nchannels int
	eph       map[int]Ephemeris
	utc       UTCConverter

	averagingDepth int
	flagAveraging  bool

	dump    *dumpSink
	metrics *pvtMetrics

	// Results of the last computed epoch. Consumers must treat
	// ValidPosition as authoritative and ignore the rest when it is false.
	ValidPosition bool
	Pos           [4]float64 // ECEF X, Y, Z [m] and clock bias [m]
	Geo           GeoPos     // Raw geodetic fix
	AvgGeo        GeoPos     // Averaged geodetic fix (equals Geo while warming up)
	UTCTime       time.Time  // UTC tag of the fix
	FixTime       GTime      // System time tag of the fix (week, TOW)
	CurrentTime   float64    // Receiver time of week of the last epoch [s]
	ValidObs      int        // Number of observations with weight 1

	// Dilution of precision, -1 when the covariance projection failed
	GDOP float64
	PDOP float64
	HDOP float64
	VDOP float64
	TDOP float64

	// Per-satellite diagnostics from the last solve. IDs and CN0 are indexed
	// by valid-observation slot; Az, El, and Dist by observation slot.
	SatIDs  []int
	SatCN0  []float64
	SatAz   []float64
	SatEl   []float64
	SatDist []float64

	// Moving average history, newest first
	histLat []float64
	histLon []float64
	histHei []float64
}

// NewPVT creates a PVT driver for the configured number of channels. A dump
// file open failure is logged and disables dumping; it does not fail
// construction. Pass a nil registerer to use the default Prometheus registry.
func NewPVT(cfg Config, reg prometheus.Registerer) *PVT {
	p := &PVT{
		nchannels:      cfg.Channels,
		eph:            make(map[int]Ephemeris, cfg.Channels),
		utc:            GSTToUTC,
		averagingDepth: cfg.AveragingDepth,
		metrics:        newPVTMetrics(reg),
		GDOP:           -1,
		PDOP:           -1,
		HDOP:           -1,
		VDOP:           -1,
		TDOP:           -1,
	}
	if cfg.DumpEnabled {
		sink, err := newDumpSink(cfg.DumpFilename)
		if err != nil {
			PrintA("Exception opening PVT lib dump file: %s\n", err.Error())
		} else {
			PrintD(1, "PVT lib dump enabled. Log file: %s\n", cfg.DumpFilename)
			p.dump = sink
		}
	}
	return p
}

// Close releases the dump sink, if any.
func (p *PVT) Close() error {
	if p.dump == nil {
		return nil
	}
	return p.dump.Close()
}

// SetAveragingDepth sets the moving average depth. The history buffers keep
// their contents; a shorter depth takes effect as epochs are processed.
func (p *PVT) SetAveragingDepth(depth int) {
	p.averagingDepth = depth
}

// SetUTCConverter overrides the default GST to UTC conversion, e.g. with the
// broadcast UTC model from the navigation message collaborator.
func (p *PVT) SetUTCConverter(utc UTCConverter) {
	p.utc = utc
}

// SetEphemeris stores the broadcast ephemeris for one satellite. The stored
// set is owned by the PVT instance and consulted on every epoch.
func (p *PVT) SetEphemeris(prn int, eph Ephemeris) {
	p.eph[prn] = eph
}

// GetPVT computes the fix for one epoch from the pseudorange observation map
// and the current receiver time of week. It returns whether the (possibly
// averaged) position is valid; an invalid epoch is a normal outcome, not an
// error.
func (p *PVT) GetPVT(ranges map[int]Obs, currentTime float64, flagAveraging bool) bool {
	p.metrics.Epochs.Inc()
	p.flagAveraging = flagAveraging
	p.CurrentTime = currentTime

	n := len(ranges)
	w := make([]float64, n)      // channel weights (diagonal)
	obs := make([]float64, n)    // corrected pseudorange observation vector
	satpos := make([]PosXYZ, n)  // satellite positions matrix (one column each)
	ids := make([]int, 0, n)     // PRNs of the satellites used
	cn0s := make([]float64, 0, n)

	prns := make([]int, 0, n)
	for prn := range ranges {
		prns = append(prns, prn)
	}
	slices.Sort(prns)

	week := 0
	utcTime := p.UTCTime
	validObs := 0
	for obsCounter, prn := range prns {
		o := ranges[prn]
		eph, ok := p.eph[prn]
		if !ok {
			// No ephemeris for this SV: de-activate the channel. The unit
			// pseudorange keeps the design matrix free of divisions by zero;
			// the zero weight removes the row from the solution.
			w[obsCounter] = 0
			obs[obsCounter] = 1
			PrintD(2, "No ephemeris data for SV %d\n", prn)
			continue
		}
		w[obsCounter] = 1

		// Common RX time algorithm: first estimate of the transmit time from
		// the raw pseudorange, then the broadcast clock model.
		txTime := currentTime - o.Pseudorange/C
		clockDrift := eph.ClockDrift(txTime)
		relCorr := eph.RelativisticCorrection(txTime)
		clockBias := clockDrift + relCorr
		txCorrected := txTime - clockBias

		satpos[obsCounter] = eph.PositionAt(txCorrected)
		obs[obsCounter] = o.Pseudorange + clockBias*C

		ids = append(ids, prn)
		cn0s = append(cn0s, o.CN0)
		validObs++

		week = eph.Week()
		gst := eph.SystemTime(week, currentTime)
		utcTime = UTCToTime(p.utc(gst, week))

		PrintD(3, "ECEF satellite SV ID=%d X=%f [m] Y=%f [m] Z=%f [m] PR_obs=%f [m]\n",
			prn, satpos[obsCounter].X, satpos[obsCounter].Y, satpos[obsCounter].Z, obs[obsCounter])
	}
	p.ValidObs = validObs
	PrintD(2, "PVT: valid observations=%d\n", validObs)

	if validObs < 4 {
		p.metrics.Rejected.WithLabelValues(rejectFewSats).Inc()
		p.ValidPosition = false
		return false
	}

	sol, err := LeastSquarePos(satpos, obs, w)
	if err != nil {
		PrintD(1, "PVT: least squares solve failed: %s\n", err.Error())
		p.metrics.Rejected.WithLabelValues(rejectSolve).Inc()
		p.ValidPosition = false
		return false
	}

	geo := Cart2Geo(sol.Pos[0], sol.Pos[1], sol.Pos[2], WGS84)
	if geo.Hei > maxPlausibleHeight {
		// Erratic PVT: some satellite configurations produce a divergent
		// solution; reject it without touching history or DOP.
		p.metrics.Rejected.WithLabelValues(rejectErratic).Inc()
		p.ValidPosition = false
		return false
	}

	p.Pos = sol.Pos
	p.Geo = geo
	p.UTCTime = utcTime
	p.FixTime = GTime{Week: week, Sec: currentTime}
	p.SatIDs = ids
	p.SatCN0 = cn0s
	p.SatAz = sol.Az
	p.SatEl = sol.El
	p.SatDist = sol.Dis
	PrintD(2, "PVT: position at TOW=%f is Lat=%f [deg], Long=%f [deg], Height=%f [m]\n",
		currentTime, geo.Lat, geo.Lon, geo.Hei)

	p.computeDOP(sol.Cov, geo)

	if p.dump != nil {
		rec := DumpRecord{
			Time:   currentTime,
			X:      sol.Pos[0],
			Y:      sol.Pos[1],
			Z:      sol.Pos[2],
			ClkOff: sol.Pos[3] / C,
			Lat:    geo.Lat,
			Lon:    geo.Lon,
			Hei:    geo.Hei,
		}
		if err := p.dump.WriteRecord(rec); err != nil {
			p.metrics.DumpFailures.Inc()
			PrintA("Exception writing PVT LS dump file: %s\n", err.Error())
		}
	}

	if flagAveraging {
		return p.applyAveraging(geo)
	}
	p.ValidPosition = true
	return true
}

// computeDOP projects the solver's covariance proxy into the local ENU frame
// and derives the precision metrics. A missing or singular covariance sets
// every metric to the -1 sentinel.
func (p *PVT) computeDOP(cov *mat.Dense, geo GeoPos) {
	p.GDOP, p.PDOP, p.HDOP, p.VDOP, p.TDOP = -1, -1, -1, -1, -1
	if cov == nil {
		return
	}

	f := enuRotation(geo.Lat, geo.Lon)
	qECEF := cov.Slice(0, 3, 0, 3)

	var dopENU mat.Dense
	dopENU.Mul(f.T(), qECEF)
	dopENU.Mul(mat.DenseCopyOf(&dopENU), f)

	gdop := math.Sqrt(mat.Trace(&dopENU))
	pdop := math.Sqrt(dopENU.At(0, 0) + dopENU.At(1, 1) + dopENU.At(2, 2))
	hdop := math.Sqrt(dopENU.At(0, 0) + dopENU.At(1, 1))
	vdop := math.Sqrt(dopENU.At(2, 2))
	tdop := math.Sqrt(cov.At(3, 3))
	if math.IsNaN(gdop) || math.IsNaN(pdop) || math.IsNaN(hdop) || math.IsNaN(vdop) || math.IsNaN(tdop) {
		return
	}
	p.GDOP, p.PDOP, p.HDOP, p.VDOP, p.TDOP = gdop, pdop, hdop, vdop, tdop
}

// applyAveraging runs the moving average position filter. Until the history
// buffers reach the configured depth the fix is reported invalid (warm-up)
// and the averaged output equals the raw sample. Depth 0 never fills.
func (p *PVT) applyAveraging(geo GeoPos) bool {
	if p.averagingDepth > 0 && len(p.histLon) >= p.averagingDepth {
		// Evict oldest values down to the window size
		keep := p.averagingDepth - 1
		p.histLon = p.histLon[:keep]
		p.histLat = p.histLat[:keep]
		p.histHei = p.histHei[:keep]
		// Push new values
		p.histLon = slices.Insert(p.histLon, 0, geo.Lon)
		p.histLat = slices.Insert(p.histLat, 0, geo.Lat)
		p.histHei = slices.Insert(p.histHei, 0, geo.Hei)

		var lat, lon, hei float64
		for i := range p.histLon {
			lat += p.histLat[i]
			lon += p.histLon[i]
			hei += p.histHei[i]
		}
		d := float64(p.averagingDepth)
		p.AvgGeo = GeoPos{Lat: lat / d, Lon: lon / d, Hei: hei / d}
		p.ValidPosition = true
		return true
	}

	// Not enough history yet
	p.histLon = slices.Insert(p.histLon, 0, geo.Lon)
	p.histLat = slices.Insert(p.histLat, 0, geo.Lat)
	p.histHei = slices.Insert(p.histHei, 0, geo.Hei)
	p.AvgGeo = geo
	p.metrics.Rejected.WithLabelValues(rejectWarmup).Inc()
	p.ValidPosition = false
	return false
}
