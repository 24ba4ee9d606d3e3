// Package pipeline describes sequences of image set operations as data.
//
// A pipeline file lists steps in order:
//
//	steps:
//	  - op: greyscale
//	  - op: blur
//	    ksize: [7, 7]
//	  - op: roi
//	    keys: [road]
//	    corners: [[0, 100], [50, 20], [100, 100]]
//	  - op: canny
//	    low: 30
//	    high: 120
//
// Both YAML and JSON are accepted.
package pipeline

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/teslashibe/go-eyes/internal/log"
	"github.com/teslashibe/go-eyes/pkg/eyes"
	"gopkg.in/yaml.v3"
)

// Op names a Set operation.
type Op string

const (
	OpGreyscale Op = "greyscale"
	OpBlur      Op = "blur"
	OpGreyBlur  Op = "grey_blur"
	OpCanny     Op = "canny"
	OpROI       Op = "roi"
	OpReset     Op = "reset"
)

// Ops lists every supported op.
var Ops = []Op{OpGreyscale, OpBlur, OpGreyBlur, OpCanny, OpROI, OpReset}

// Valid reports whether o is a supported op.
func (o Op) Valid() bool {
	for _, op := range Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Step is one operation applied to a selection of images.
// Zero parameters fall back to the eyes defaults.
type Step struct {
	Op   Op       `yaml:"op" json:"op"`
	Keys []string `yaml:"keys,omitempty" json:"keys,omitempty"`

	// Blur parameters.
	KSize [2]int  `yaml:"ksize,omitempty" json:"ksize,omitempty"`
	Sigma float64 `yaml:"sigma,omitempty" json:"sigma,omitempty"`

	// Canny thresholds.
	Low  float32 `yaml:"low,omitempty" json:"low,omitempty"`
	High float32 `yaml:"high,omitempty" json:"high,omitempty"`

	// ROI polygon as [x, y] pairs.
	Corners [][2]int `yaml:"corners,omitempty" json:"corners,omitempty"`
}

// Pipeline is an ordered list of steps.
type Pipeline struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// Parse decodes a pipeline from YAML or JSON and validates it.
func Parse(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("pipeline: parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses a pipeline file.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return Parse(data)
}

// ParseOps builds a pipeline of default steps from a comma separated list
// such as "greyscale,blur,canny". Every roi step uses corners; when corners
// are given and the list has no roi step, one is appended.
func ParseOps(s string, corners []image.Point) (*Pipeline, error) {
	var p Pipeline
	hasROI := false
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		st := Step{Op: Op(strings.ToLower(f))}
		if st.Op == OpROI {
			st.Corners = cornerPairs(corners)
			hasROI = true
		}
		p.Steps = append(p.Steps, st)
	}
	if len(corners) > 0 && !hasROI {
		p.Steps = append(p.Steps, Step{Op: OpROI, Corners: cornerPairs(corners)})
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseCorners parses "x,y;x,y;x,y" into points.
func ParseCorners(s string) ([]image.Point, error) {
	var pts []image.Point
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		var x, y int
		if _, err := fmt.Sscanf(pair, "%d,%d", &x, &y); err != nil {
			return nil, fmt.Errorf("pipeline: corner %q: %w", pair, err)
		}
		pts = append(pts, image.Pt(x, y))
	}
	return pts, nil
}

func cornerPairs(pts []image.Point) [][2]int {
	pairs := make([][2]int, len(pts))
	for i, pt := range pts {
		pairs[i] = [2]int{pt.X, pt.Y}
	}
	return pairs
}

// Validate checks every step without touching any image.
func (p *Pipeline) Validate() error {
	if len(p.Steps) == 0 {
		return ErrEmpty
	}
	for i, st := range p.Steps {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
	}
	return nil
}

// Validate checks the op and its parameters.
func (st Step) Validate() error {
	if !st.Op.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
	switch st.Op {
	case OpBlur, OpGreyBlur:
		if err := st.BlurOptions().Validate(); err != nil {
			return err
		}
	case OpCanny:
		if err := st.CannyOptions().Validate(); err != nil {
			return err
		}
	case OpROI:
		if len(st.Corners) < eyes.MinCorners {
			return fmt.Errorf("%w: got %d", eyes.ErrTooFewCorners, len(st.Corners))
		}
	}
	return nil
}

// BlurOptions returns the step's blur parameters, defaulting an unset kernel.
func (st Step) BlurOptions() eyes.BlurOptions {
	opts := eyes.DefaultBlurOptions()
	if st.KSize != [2]int{} {
		opts.KSize = image.Pt(st.KSize[0], st.KSize[1])
	}
	opts.Sigma = st.Sigma
	return opts
}

// CannyOptions returns the step's thresholds. Each unset threshold keeps
// its default on its own.
func (st Step) CannyOptions() eyes.CannyOptions {
	opts := eyes.DefaultCannyOptions()
	if st.Low != 0 {
		opts.Low = st.Low
	}
	if st.High != 0 {
		opts.High = st.High
	}
	return opts
}

// Points returns the ROI corners as image points.
func (st Step) Points() []image.Point {
	pts := make([]image.Point, len(st.Corners))
	for i, c := range st.Corners {
		pts[i] = image.Pt(c[0], c[1])
	}
	return pts
}

// Apply runs the step against set.
func (st Step) Apply(set *eyes.Set) error {
	keys := eyes.ParseKeys(st.Keys)
	switch st.Op {
	case OpGreyscale:
		return set.Greyscale(keys...)
	case OpBlur:
		return set.GaussianBlur(st.BlurOptions(), keys...)
	case OpGreyBlur:
		return set.GreyBlurred(st.BlurOptions(), keys...)
	case OpCanny:
		return set.Canny(st.CannyOptions(), keys...)
	case OpROI:
		return set.SetROI(st.Points(), keys...)
	case OpReset:
		return set.Reset(keys...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
}

// Apply validates the pipeline, then runs each step in order. It stops at
// the first failing step; steps already applied stay applied.
func (p *Pipeline) Apply(set *eyes.Set) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for i, st := range p.Steps {
		if err := st.Apply(set); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Op, err)
		}
		log.Debug("pipeline step applied", "step", i, "op", string(st.Op), "keys", st.Keys)
	}
	return nil
}

// String returns the ops joined by commas.
func (p *Pipeline) String() string {
	ops := make([]string, len(p.Steps))
	for i, st := range p.Steps {
		ops[i] = string(st.Op)
	}
	return strings.Join(ops, ",")
}
