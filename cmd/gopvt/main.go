// Copyright (c) 2026 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.24
//

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	m "github.com/mkhts/gopvt"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

// Structure to hold command line argument information
type cmdOpt struct {
	obsFn     string
	navFn     string
	posFn     string
	cfgFn     string
	averaging bool
	noHeader  bool
	tint      int
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		m.PrintA(`
[Usage]
	%s [Options] epochs.obs states.nav

[Options]
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.StringVar(&a.cfgFn, "c", "", "Receiver config YAML file path. Defaults are used when omitted.")
	flag.StringVar(&a.posFn, "o", "", "Output pos file path. If not specified, output to stdout.")
	flag.BoolVar(&a.averaging, "a", false, "Enable moving average position smoothing for every epoch.")
	flag.BoolVar(&a.noHeader, "nh", false, "Do not output header section of pos file.")
	flag.IntVar(&a.tint, "ti", 0, "Time interval of output epochs [s]. 0 outputs every epoch.")
	var dbg int
	flag.IntVar(&dbg, "x", 0, "Debug information display. Specify level value. 0(OFF), 1(display), 2(detailed display), 3(more detailed), 4(most detailed)")
	flag.Parse()
	if flag.NArg() != 2 {
		return a, fmt.Errorf("too less or many arguments")
	}
	a.obsFn = flag.Arg(0)
	a.navFn = flag.Arg(1)
	m.DBG_ = dbg
	return
}

// Main application processing
func runApplication(args cmdOpt) error {

	cfg := m.DefaultConfig()
	if args.cfgFn != "" {
		c, err := m.LoadConfig(args.cfgFn)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *c
	}
	if cfg.Debug > m.DBG_ {
		m.DBG_ = cfg.Debug
	}

	ephs, err := readNavFile(args.navFn)
	if err != nil {
		return fmt.Errorf("failed to read satellite state file: %w", err)
	}

	epochs, err := readObsFile(args.obsFn)
	if err != nil {
		return fmt.Errorf("failed to read observation file: %w", err)
	}

	pos, err := prepareOutput(args)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer closeOutput(pos)

	pvt := m.NewPVT(cfg, nil)
	defer pvt.Close()
	for _, e := range ephs {
		pvt.SetEphemeris(e.PRN, e)
	}

	if !args.noHeader {
		printPosHeader(pos, os.Args[0], args.obsFn, args.navFn)
	}

	// Process epochs
	for _, ep := range epochs {
		valid := pvt.GetPVT(ep.ranges, ep.tow, args.averaging)
		if args.tint > 0 {
			gt := m.GTime{Sec: ep.tow}
			if !gt.Divisible(args.tint) {
				continue
			}
		}
		printPos(pos, pvt, ep.tow, valid, args.averaging)
	}

	return nil
}

// Prepare output file
func prepareOutput(args cmdOpt) (io.WriteCloser, error) {

	// Use stdout if no output file is specified
	if len(args.posFn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}

	// Create output file
	posf, err := os.Create(args.posFn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return posf, nil
}

// Close output file
func closeOutput(pos io.WriteCloser) {
	if pos != nil {
		pos.Close()
	}
}

// nopCloser - WriteCloser that ignores close operations
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// One epoch of observations from the replay file
type epoch struct {
	tow    float64
	ranges map[int]m.Obs
}

// Read the satellite state file. One satellite per line:
//
//	prn week t0 x y z vx vy vz af0 af1 af2 rel
//
// Lines starting with # are comments.
func readNavFile(fn string) ([]*m.KinematicEphemeris, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ephs []*m.KinematicEphemeris
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fs := strings.Fields(line)
		if len(fs) != 13 {
			return nil, fmt.Errorf("line %d: expected 13 fields, got %d", lineNo, len(fs))
		}
		v := make([]float64, 13)
		for i, s := range fs {
			v[i], err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		ephs = append(ephs, &m.KinematicEphemeris{
			PRN:     int(v[0]),
			WeekNum: int(v[1]),
			T0:      v[2],
			Pos:     m.PosXYZ{X: v[3], Y: v[4], Z: v[5]},
			Vel:     m.PosXYZ{X: v[6], Y: v[7], Z: v[8]},
			Af0:     v[9],
			Af1:     v[10],
			Af2:     v[11],
			Rel:     v[12],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ephs, nil
}

// Read the observation file. Epoch blocks:
//
//	> tow
//	prn pseudorange cn0
//	...
//
// Lines starting with # are comments.
func readObsFile(fn string) ([]epoch, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var epochs []epoch
	var cur *epoch
	var last m.GTime
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, ">") {
			tow, err := strconv.ParseFloat(strings.TrimSpace(line[1:]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			gt := m.GTime{Sec: tow}
			if len(epochs) > 0 && !last.Less(gt, false) {
				return nil, fmt.Errorf("line %d: epoch %g out of time order", lineNo, tow)
			}
			last = gt
			epochs = append(epochs, epoch{tow: tow, ranges: map[int]m.Obs{}})
			cur = &epochs[len(epochs)-1]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: observation before epoch header", lineNo)
		}
		fs := strings.Fields(line)
		if len(fs) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 fields, got %d", lineNo, len(fs))
		}
		prn, err := strconv.Atoi(fs[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		pr, err := strconv.ParseFloat(fs[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cn0, err := strconv.ParseFloat(fs[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cur.ranges[prn] = m.Obs{PRN: prn, Pseudorange: pr, CN0: cn0, Valid: true}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return epochs, nil
}

// Print pos file header
func printPosHeader(pos io.Writer, cmd, obsFn, navFn string) {
	fmt.Fprintf(pos, "%% program   : %s\n", filepath.Base(cmd))
	fmt.Fprintf(pos, "%% inp file  : %s\n", obsFn)
	fmt.Fprintf(pos, "%% inp file  : %s\n", navFn)
	fmt.Fprintf(pos, "%%  UTC                         TOW(s) latitude(deg) longitude(deg)  height(m)   V  ns       clk_bias(m)       gdop       pdop       hdop       vdop       tdop\n")
}

// Output one pos line
func printPos(pos io.Writer, pvt *m.PVT, tow float64, valid bool, averaging bool) {
	v := 0
	if valid {
		v = 1
	}
	geo := pvt.Geo
	if averaging {
		geo = pvt.AvgGeo
	}
	fmt.Fprintf(pos, "%s %12.3f %13.9f %14.9f %10.4f %3d %3d %17.4f %10.3f %10.3f %10.3f %10.3f %10.3f\n",
		pvt.UTCTime.UTC().Format("2006/01/02 15:04:05.000"), tow,
		geo.Lat, geo.Lon, geo.Hei, v, pvt.ValidObs, pvt.Pos[3],
		pvt.GDOP, pvt.PDOP, pvt.HDOP, pvt.VDOP, pvt.TDOP)
}
