// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.22
//

package gopvt

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons reported on the epochs_rejected_total counter.
const (
	rejectFewSats = "few_satellites"
	rejectErratic = "erratic_height"
	rejectWarmup  = "averaging_warmup"
	rejectSolve   = "solve_failed"
)

// pvtMetrics bundles the Prometheus counters kept by the epoch driver.
type pvtMetrics struct {
	Epochs       prometheus.Counter
	Rejected     *prometheus.CounterVec
	DumpFailures prometheus.Counter
}

// newPVTMetrics registers the PVT counters against the provided registerer,
// defaulting to the global Prometheus registry when nil. A collector that is
// already registered is reused.
func newPVTMetrics(reg prometheus.Registerer) *pvtMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	epochs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pvt_epochs_total",
		Help: "Total number of navigation epochs processed by the PVT solver.",
	})
	epochs = registerCounter(reg, epochs)

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pvt_epochs_rejected_total",
		Help: "Epochs that produced no valid fix, labeled by rejection reason.",
	}, []string{"reason"})
	rejected = registerCounterVec(reg, rejected)

	dumpFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pvt_dump_write_failures_total",
		Help: "Failed writes to the binary PVT dump file.",
	})
	dumpFailures = registerCounter(reg, dumpFailures)

	return &pvtMetrics{
		Epochs:       epochs,
		Rejected:     rejected,
		DumpFailures: dumpFailures,
	}
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) prometheus.Counter {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return c
}
