// eyes loads images, runs OpenCV preprocessing over them and reports,
// saves, shows or serves the results.
//
//	eyes -ops greyscale,blur,canny -save road.png car=car.jpg
//	eyes -roi "0,480;320,240;640,480" -show road.png
//	eyes -pipeline steps.yaml -serve a=https://example.com/a.png
//	eyes -watch localhost:8090
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-eyes/internal/config"
	"github.com/teslashibe/go-eyes/internal/log"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "eyes: %v\n", err)
		os.Exit(2)
	}

	level := config.LogLevel()
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Error("eyes failed", "error", err)
		os.Exit(1)
	}
}

// Config holds the parsed command line.
type Config struct {
	Sources  []string
	Ops      string
	Pipeline string
	ROI      string
	OutDir   string
	Format   string
	Save     bool
	Show     bool
	Serve    bool
	Port     string
	Watch    string
	Debug    bool
}

// parseFlags parses args into a Config. Environment variables provide the
// defaults that flags override.
func parseFlags(args []string, output io.Writer) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("eyes", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "usage: eyes [flags] source...")
		fmt.Fprintln(output, "  source is path, url, or name=path|url")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.Ops, "ops", "", "Comma separated ops: greyscale, blur, grey_blur, canny, roi, reset")
	fs.StringVar(&cfg.Pipeline, "pipeline", "", "YAML or JSON pipeline file (overrides -ops)")
	fs.StringVar(&cfg.ROI, "roi", "", "Region of interest corners as \"x,y;x,y;x,y\"")
	fs.StringVar(&cfg.OutDir, "out", config.OutputDir(), "Output directory for -save")
	fs.StringVar(&cfg.Format, "format", config.Format(), "Output format: png or jpg")
	fs.BoolVar(&cfg.Save, "save", false, "Write every processed image to -out")
	fs.BoolVar(&cfg.Show, "show", false, "Show processed images and wait for a key press")
	fs.BoolVar(&cfg.Serve, "serve", false, "Serve the image set over HTTP after processing")
	fs.StringVar(&cfg.Port, "port", config.Port(), "Port for -serve")
	fs.StringVar(&cfg.Watch, "watch", "", "Print events from a running server (host:port or URL)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Sources = fs.Args()

	if cfg.Watch != "" {
		if len(cfg.Sources) > 0 || cfg.Serve {
			return cfg, errors.New("-watch cannot be combined with sources or -serve")
		}
		return cfg, nil
	}
	if len(cfg.Sources) == 0 && !cfg.Serve {
		fs.Usage()
		return cfg, errors.New("no image sources given")
	}
	return cfg, nil
}
