package decimate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/mjb-oz/geoutils/internal/las"
	"github.com/mjb-oz/geoutils/pkg/types"
)

// Runner decimates a batch of LAS files into an output directory.
type Runner struct {
	Fs afero.Fs
	// OutDir receives the outputs. Empty means next to each input.
	OutDir string
	Factor Factor
	// Jobs bounds the number of files processed at once. Values below 1
	// mean one at a time.
	Jobs int
	Log  logrus.FieldLogger
}

// Result describes one decimated file.
type Result struct {
	Input   string
	Output  string
	RowsIn  int
	RowsOut int
	// Curves lists the curve mnemonics in column order.
	Curves []string
}

// Summary describes a finished batch, in input order.
type Summary struct {
	Results []Result
}

// RowsIn returns the total number of input rows.
func (s Summary) RowsIn() int {
	n := 0
	for _, r := range s.Results {
		n += r.RowsIn
	}
	return n
}

// RowsOut returns the total number of retained rows.
func (s Summary) RowsOut() int {
	n := 0
	for _, r := range s.Results {
		n += r.RowsOut
	}
	return n
}

// Plan maps each input to its output path. It fails with
// types.ErrOutputCollision if two inputs share an output name or an output
// would overwrite an input.
func (r *Runner) Plan(files []string) (map[string]string, error) {
	plan := make(map[string]string, len(files))
	inputs := make(map[string]bool, len(files))
	for _, f := range files {
		inputs[filepath.Clean(f)] = true
	}
	owner := make(map[string]string, len(files))
	for _, f := range files {
		dir := r.OutDir
		if dir == "" {
			dir = filepath.Dir(f)
		}
		out := filepath.Join(dir, OutputName(f, r.Factor))
		if prev, ok := owner[out]; ok {
			return nil, fmt.Errorf("%w: %s and %s both map to %s", types.ErrOutputCollision, prev, f, out)
		}
		if inputs[filepath.Clean(out)] {
			return nil, fmt.Errorf("%w: %s would overwrite an input", types.ErrOutputCollision, out)
		}
		owner[out] = f
		plan[f] = out
	}
	return plan, nil
}

// Run decimates files. The first failure cancels files not yet started and
// is returned; outputs already written are left in place.
func (r *Runner) Run(ctx context.Context, files []string) (Summary, error) {
	plan, err := r.Plan(files)
	if err != nil {
		return Summary{}, err
	}
	if r.OutDir != "" {
		if err := r.Fs.MkdirAll(r.OutDir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("create output directory: %w", err)
		}
	}

	jobs := r.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var mu sync.Mutex
	results := make(map[string]Result, len(files))

	for _, in := range files {
		in, out := in, plan[in]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.decimateFile(in, out)
			if err != nil {
				return err
			}
			mu.Lock()
			results[in] = res
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()

	var summary Summary
	for _, in := range files {
		if res, ok := results[in]; ok {
			summary.Results = append(summary.Results, res)
		}
	}
	return summary, err
}

func (r *Runner) decimateFile(in, out string) (Result, error) {
	log, err := las.ReadFile(r.Fs, in)
	if err != nil {
		return Result{}, fmt.Errorf("read las: %w", err)
	}
	reduced, err := Apply(log, r.Factor)
	if err != nil {
		return Result{}, fmt.Errorf("decimate %s: %w", in, err)
	}
	if err := las.WriteFile(r.Fs, out, reduced); err != nil {
		return Result{}, fmt.Errorf("write las: %w", err)
	}

	res := Result{
		Input:   in,
		Output:  out,
		RowsIn:  len(log.Rows),
		RowsOut: len(reduced.Rows),
		Curves:  log.CurveNames(),
	}
	if r.Log != nil {
		r.Log.WithFields(logrus.Fields{
			"input":    in,
			"output":   out,
			"factor":   r.Factor.Value(),
			"curves":   strings.Join(res.Curves, ","),
			"rows_in":  res.RowsIn,
			"rows_out": res.RowsOut,
		}).Info("decimated")
	}
	return res, nil
}
