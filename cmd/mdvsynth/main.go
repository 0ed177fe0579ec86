// cmd/mdvsynth/main.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// mdvsynth writes a synthetic PPI or RHI volume holding an analytic storm
// cell, for trying out mdvplot without real radar data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mdvplot/mdvplot/log"
	"github.com/mdvplot/mdvplot/math"
	"github.com/mdvplot/mdvplot/mdv"
	"github.com/mdvplot/mdvplot/moment"

	"github.com/joho/godotenv"
)

var (
	scan      = flag.String("scan", mdv.ScanPPI, "Scan type: ppi or rhi")
	output    = flag.String("o", "synth"+mdv.Extension, "Output location")
	name      = flag.String("name", "SYNTH", "Radar name")
	lat       = flag.Float64("lat", -12.2491, "Radar latitude")
	lon       = flag.Float64("lon", 131.0440, "Radar longitude")
	angles    = flag.String("angles", "", "Comma-separated fixed angles: elevations for PPIs, azimuths for RHIs")
	rays      = flag.Int("rays", 0, "Rays per sweep")
	gates     = flag.Int("gates", 0, "Gates per ray")
	spacing   = flag.Float64("spacing", 0, "Gate spacing in km")
	nyquist   = flag.Float64("nyquist", 0, "Unambiguous velocity in m/s")
	startTime = flag.String("time", "", "Scan start time, RFC3339")
	moments   = flag.String("moments", "", "Comma-separated moments to include (default: all)")
	logLevel  = flag.String("loglevel", "info", "Logging level")
	envFile   = flag.String("env", ".env", "File of environment variables to load, if it exists")
)

func main() {
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "usage: mdvsynth [flags]\nwhere [flags] may be:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *envFile, err)
		os.Exit(1)
	}

	lg := log.New(log.Options{Level: *logLevel, Stderr: true})

	opts, err := synthOptions()
	if err != nil {
		LogFatal(lg, "%v", err)
	}

	v := mdv.Synthesize(opts)
	if err := v.Validate(); err != nil {
		LogFatal(lg, "%v", err)
	}

	root, path, err := mdv.ParseLocation(*output)
	if err != nil {
		LogFatal(lg, "%v", err)
	}
	sb, err := mdv.OpenBackend(context.Background(), root)
	if err != nil {
		LogFatal(lg, "%v", err)
	}
	defer sb.Close()

	n, err := mdv.StoreVolume(sb, path, v)
	if err != nil {
		LogFatal(lg, "%s: %v", *output, err)
	}
	lg.Info("wrote volume", "output", *output, "scan", v.Scan, "sweeps", v.NumSweeps(), "bytes", n)
}

func LogFatal(lg *log.Logger, msg string, args ...any) {
	lg.Errorf(msg, args...)
	fmt.Fprintf(os.Stderr, "mdvsynth: "+msg+"\n", args...)
	os.Exit(1)
}

func synthOptions() (mdv.SynthOptions, error) {
	opts := mdv.SynthOptions{
		Scan:          strings.ToLower(*scan),
		RadarName:     *name,
		Location:      math.Point2LL{float32(*lon), float32(*lat)},
		NumRays:       *rays,
		NumGates:      *gates,
		GateSpacingKm: float32(*spacing),
		UnambigVelMps: float32(*nyquist),
	}
	if opts.Scan != mdv.ScanPPI && opts.Scan != mdv.ScanRHI {
		return opts, fmt.Errorf("%s: unknown scan type", *scan)
	}

	if *angles != "" {
		for _, s := range strings.Split(*angles, ",") {
			a, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
			if err != nil {
				return opts, fmt.Errorf("-angles: %w", err)
			}
			opts.Angles = append(opts.Angles, float32(a))
		}
	}

	if *startTime != "" {
		t, err := time.Parse(time.RFC3339, *startTime)
		if err != nil {
			return opts, fmt.Errorf("-time: %w", err)
		}
		opts.Time = t
	}

	if *moments != "" {
		for _, s := range strings.Split(*moments, ",") {
			m, err := moment.Parse(strings.ToUpper(strings.TrimSpace(s)))
			if err != nil {
				return opts, err
			}
			opts.Moments = append(opts.Moments, m)
		}
	}

	return opts, nil
}
