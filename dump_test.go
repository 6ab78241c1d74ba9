// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.25
//

package gopvt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDumpRecordLayout(t *testing.T) {
	truthGeo := GeoPos{Lat: 48.137154, Lon: 11.576124, Hei: 519.0}
	truth := truthGeo.ToXYZ(WGS84)

	cfg := DefaultConfig()
	cfg.DumpEnabled = true
	cfg.DumpFilename = filepath.Join(t.TempDir(), "pvt.dat")

	p := NewPVT(cfg, prometheus.NewRegistry())
	ranges := loadScenario(p, truth, 6)
	if !p.GetPVT(ranges, testTOW, false) {
		t.Fatal("expected a valid fix")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(cfg.DumpFilename)
	if err != nil {
		t.Fatalf("open dump: %v", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		t.Fatalf("stat dump: %v", err)
	}
	// One epoch, eight float64 fields
	assert.Equal(t, int64(64), st.Size())

	var rec DumpRecord
	if err := binary.Read(f, binary.LittleEndian, &rec); err != nil {
		t.Fatalf("read record: %v", err)
	}
	assert.Equal(t, testTOW, rec.Time)
	assert.Equal(t, p.Pos[0], rec.X)
	assert.Equal(t, p.Pos[1], rec.Y)
	assert.Equal(t, p.Pos[2], rec.Z)
	assert.Equal(t, p.Pos[3]/C, rec.ClkOff)
	assert.Equal(t, p.Geo.Lat, rec.Lat)
	assert.Equal(t, p.Geo.Lon, rec.Lon)
	assert.Equal(t, p.Geo.Hei, rec.Hei)
}

func TestDumpAppendsPerEpoch(t *testing.T) {
	truth := (&GeoPos{Lat: 48.137154, Lon: 11.576124, Hei: 519.0}).ToXYZ(WGS84)

	cfg := DefaultConfig()
	cfg.DumpEnabled = true
	cfg.DumpFilename = filepath.Join(t.TempDir(), "pvt.dat")

	p := NewPVT(cfg, prometheus.NewRegistry())
	ranges := loadScenario(p, truth, 6)
	for i := 0; i < 3; i++ {
		if !p.GetPVT(ranges, testTOW+float64(i), false) {
			t.Fatalf("epoch %d: expected a valid fix", i)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err := os.Stat(cfg.DumpFilename)
	if err != nil {
		t.Fatalf("stat dump: %v", err)
	}
	assert.Equal(t, int64(3*64), st.Size())
}

func TestDumpOpenFailureDoesNotDisableSolving(t *testing.T) {
	truth := (&GeoPos{Lat: 48.137154, Lon: 11.576124, Hei: 519.0}).ToXYZ(WGS84)

	cfg := DefaultConfig()
	cfg.DumpEnabled = true
	cfg.DumpFilename = filepath.Join(t.TempDir(), "no", "such", "dir", "pvt.dat")

	p := NewPVT(cfg, prometheus.NewRegistry())
	defer p.Close()
	assert.Nil(t, p.dump)

	ranges := loadScenario(p, truth, 6)
	assert.True(t, p.GetPVT(ranges, testTOW, false))
}

func TestDumpWriteFailureDoesNotInvalidateFix(t *testing.T) {
	truth := (&GeoPos{Lat: 48.137154, Lon: 11.576124, Hei: 519.0}).ToXYZ(WGS84)

	cfg := DefaultConfig()
	cfg.DumpEnabled = true
	cfg.DumpFilename = filepath.Join(t.TempDir(), "pvt.dat")

	p := NewPVT(cfg, prometheus.NewRegistry())
	if p.dump == nil {
		t.Fatal("dump sink not opened")
	}
	// Force the next write to fail
	p.dump.f.Close()

	ranges := loadScenario(p, truth, 6)
	assert.True(t, p.GetPVT(ranges, testTOW, false))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.DumpFailures))
}
