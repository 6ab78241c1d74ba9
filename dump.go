// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.21
//

package gopvt

import (
	"encoding/binary"
	"fmt"
	"os"
)

// DumpRecord is one fixed-layout epoch record: eight little-endian float64
// fields, no header, no framing.
type DumpRecord struct {
	Time   float64 // PVT receiver time [s]
	X      float64 // ECEF user position X [m]
	Y      float64 // ECEF user position Y [m]
	Z      float64 // ECEF user position Z [m]
	ClkOff float64 // User clock offset [s]
	Lat    float64 // Geodetic latitude [deg]
	Lon    float64 // Geodetic longitude [deg]
	Hei    float64 // Geodetic height [m]
}

// dumpSink appends DumpRecords to a binary file. The file is opened once at
// construction and held for the sink's lifetime; there is no rotation and no
// concurrent-writer support.
type dumpSink struct {
	f    *os.File
	path string
}

func newDumpSink(path string) (*dumpSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PVT dump file %s: %w", path, err)
	}
	return &dumpSink{f: f, path: path}, nil
}

func (d *dumpSink) WriteRecord(rec DumpRecord) error {
	if err := binary.Write(d.f, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("failed to write PVT dump record: %w", err)
	}
	return nil
}

func (d *dumpSink) Close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}
