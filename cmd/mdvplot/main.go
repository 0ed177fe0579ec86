// cmd/mdvplot/main.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// mdvplot renders PPI and RHI panels of radar volumes to PNG images.
//
// Panels are described either by flags, for a single panel, or by a JSON
// or YAML job file. Volumes and outputs may be local paths or gs:// or
// s3:// locations; cloud credentials are taken from the environment,
// which may be supplemented by a .env file.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/mdvplot/mdvplot/log"
	"github.com/mdvplot/mdvplot/mdv"
	"github.com/mdvplot/mdvplot/plot"
	"github.com/mdvplot/mdvplot/renderer"
	"github.com/mdvplot/mdvplot/util"

	"github.com/goforj/godump"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

var (
	jobFile   = flag.String("job", "", "JSON or YAML file describing the panels to render")
	envFile   = flag.String("env", ".env", "File of environment variables to load, if it exists")
	logLevel  = flag.String("loglevel", "info", "Logging level: debug, info, warn, error")
	logDir    = flag.String("logdir", "", "Log file directory (default: user cache dir)")
	dump      = flag.Bool("dump", false, "Print the volume's metadata and exit")
	list      = flag.Bool("list", false, "List the stored volumes under each location given and exit")
	colorMaps = flag.Bool("colormaps", false, "List the available color maps and exit")
	width     = flag.Int("width", defaultWidth, "Image width in pixels")
	height    = flag.Int("height", defaultHeight, "Image height in pixels")
	nWorkers  = flag.Int("nworkers", runtime.NumCPU(), "Number of panels to render concurrently")

	panelFlags PanelFlags
)

func init() {
	flag.StringVar(&panelFlags.Kind, "kind", "", "Panel kind, ppi or rhi (default: the volume's scan type)")
	flag.IntVar(&panelFlags.Sweep, "sweep", 0, "Sweep to plot")
	flag.StringVar(&panelFlags.Moment, "moment", "DBZ", "Moment to plot")
	flag.StringVar(&panelFlags.Range, "range", "", "Colour scale as min,max (default: the moment's)")
	flag.StringVar(&panelFlags.Rings, "rings", "", "Comma-separated range ring radii, in km")
	flag.Float64Var(&panelFlags.Cross, "cross", 0, "Half-length in km of a cross-hair over the radar (PPI only)")
	flag.StringVar(&panelFlags.Mask, "mask", "", "Hide cells where another moment is below a threshold, as MOMENT:threshold")
	flag.StringVar(&panelFlags.Title, "title", "", "Title template (default: "+fmt.Sprintf("%q", plot.DefaultTitle)+")")
	flag.StringVar(&panelFlags.XLim, "xlim", "", "x axis limits as min,max in km")
	flag.StringVar(&panelFlags.YLim, "ylim", "", "y axis limits as min,max in km")
	flag.StringVar(&panelFlags.ColorMap, "colormap", renderer.DefaultColorMap, "Color map")
	flag.StringVar(&panelFlags.Output, "o", "mdvplot.png", "Output location")
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: mdvplot [flags] volume\n       mdvplot -job job.yaml\nwhere [flags] may be:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *envFile, err)
		os.Exit(1)
	}

	lg := log.New(log.Options{Level: *logLevel, Dir: *logDir, Stderr: true})
	defer lg.CatchAndReportCrash()

	if *colorMaps {
		for _, name := range renderer.ColorMapNames() {
			fmt.Println(name)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	loader := mdv.NewLoader(ctx, lg)
	defer func() {
		if err := loader.Close(); err != nil {
			lg.Errorf("%v", err)
		}
	}()

	if *list {
		if flag.NArg() == 0 {
			usage()
		}
		for _, loc := range flag.Args() {
			if err := listVolumes(loader, loc); err != nil {
				LogFatal(lg, "%s: %v", loc, err)
			}
		}
		return
	}

	job, err := makeJob()
	if err != nil {
		LogFatal(lg, "%v", err)
	}

	vol, err := loader.Load(job.Volume)
	if err != nil {
		LogFatal(lg, "%v", err)
	}

	if *dump {
		godump.Dump(vol.RadarInfo)
		begin, end := vol.Times()
		godump.Dump(map[string]any{
			"scan_type":  vol.Scan,
			"time_begin": begin,
			"time_end":   end,
			"fields":     vol.FieldHeaders,
			"elevations": vol.Elevations,
			"azimuths":   vol.Azimuths,
		})
		if err := dumpTitleInfo(job, vol); err != nil {
			LogFatal(lg, "%v", err)
		}
		return
	}

	if err := renderJob(ctx, loader, job, vol, lg); err != nil {
		LogFatal(lg, "%v", err)
	}
}

func LogFatal(lg *log.Logger, msg string, args ...any) {
	lg.Errorf(msg, args...)
	fmt.Fprintf(os.Stderr, "mdvplot: "+msg+"\n", args...)
	os.Exit(1)
}

// makeJob returns the job given by -job or else the single-panel job
// described by the other flags.
func makeJob() (*Job, error) {
	var job *Job
	if *jobFile != "" {
		var err error
		if job, err = LoadJob(*jobFile); err != nil {
			return nil, err
		}
		if flag.NArg() == 1 {
			job.Volume = flag.Arg(0)
		} else if flag.NArg() > 1 {
			usage()
		}
	} else {
		if flag.NArg() != 1 {
			usage()
		}
		p, err := panelFlags.Panel()
		if err != nil {
			return nil, err
		}
		job = &Job{
			Volume:   flag.Arg(0),
			ColorMap: panelFlags.ColorMap,
			Width:    *width,
			Height:   *height,
			Panels:   []JobPanel{p},
		}
	}

	if err := job.Resolve(); err != nil {
		return nil, err
	}
	return job, nil
}

// renderJob renders the job's panels concurrently; each panel has its own
// Figure.
func renderJob(ctx context.Context, loader *mdv.Loader, job *Job, vol *mdv.Volume, lg *log.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(*nWorkers, 1))

	for _, p := range job.Panels {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			fig := renderer.NewFigure(lg)
			fig.ColorMap, _ = renderer.LookupColorMap(p.ColorMap)
			if err := plot.Render(fig, vol, p.Panel, lg); err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := fig.WritePNG(&buf, job.Width, job.Height); err != nil {
				return fmt.Errorf("%s: %w", p.Output, err)
			}
			n, err := storeOutput(loader, p.Output, &buf)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Output, err)
			}

			lg.Info("wrote panel", "panel", p.Panel.String(), "output", p.Output, "bytes", n,
				"elapsed", time.Since(start))
			return nil
		})
	}

	return eg.Wait()
}

// dumpTitleInfo prints the mapping each panel's title template is
// formatted with, so that users can see which keys are available.
func dumpTitleInfo(job *Job, vol *mdv.Volume) error {
	for i, p := range job.Panels {
		info, err := plot.MakeInfo(vol, p.Moment)
		if err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		fmt.Printf("panel %d (%s) title keys:\n%s\n", i, p.Panel, b)
	}
	return nil
}

func storeOutput(loader *mdv.Loader, loc string, buf *bytes.Buffer) (int64, error) {
	root, path, err := mdv.ParseLocation(loc)
	if err != nil {
		return 0, err
	}
	sb, err := loader.Backend(root)
	if err != nil {
		return 0, err
	}
	return sb.Store(path, buf)
}

func listVolumes(loader *mdv.Loader, loc string) error {
	root, prefix, err := mdv.ParseLocation(loc)
	if err != nil {
		return err
	}
	sb, err := loader.Backend(root)
	if err != nil {
		return err
	}
	objs, err := sb.List(prefix)
	if err != nil {
		return err
	}

	for _, path := range util.SortedMapKeys(objs) {
		fmt.Printf("%12d %s\n", objs[path], path)
	}
	return nil
}
