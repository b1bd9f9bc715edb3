package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"boxhaul/internal/config"
	"boxhaul/internal/gridio"
	"boxhaul/internal/logging"
	"boxhaul/internal/metrics"
	"boxhaul/internal/persistence/indexdb"
	"boxhaul/internal/report"
	"boxhaul/internal/runner"
	"boxhaul/internal/util"
)

const exitStuck = 3

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath, in, out, reportPath string
		traceDir, indexPath          string
		metricsPath, logLevel        string
		gen, boxes, workers, size    int
		seed                         int64
		header                       bool
	)
	flag.StringVar(&cfgPath, "config", "", "run config yaml (optional)")
	flag.StringVar(&in, "in", "", "input grid file (default stdin)")
	flag.StringVar(&out, "out", "", "actions file (single) or summary file (batch), default stdout")
	flag.StringVar(&reportPath, "report", "", "write the JSON run report here")
	flag.StringVar(&traceDir, "trace", "", "directory for zstd event traces")
	flag.StringVar(&indexPath, "index", "", "sqlite run index")
	flag.StringVar(&metricsPath, "metrics", "", "prometheus textfile to write on exit")
	flag.StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	flag.IntVar(&gen, "gen", 0, "solve this many generated grids (batch)")
	flag.IntVar(&boxes, "boxes", 0, "boxes per generated grid (0 = every cell)")
	flag.IntVar(&workers, "workers", 0, "concurrent solves in batch mode")
	flag.IntVar(&size, "size", 0, "grid size when inputs carry no header")
	flag.Int64Var(&seed, "seed", 0, "base seed for generated grids")
	flag.BoolVar(&header, "header", true, "inputs start with a grid size line")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Path = out
		case "report":
			cfg.Report.Path = reportPath
		case "trace":
			cfg.Trace.Dir = traceDir
		case "index":
			cfg.Index.Path = indexPath
		case "metrics":
			cfg.Metrics.Path = metricsPath
		case "log-level":
			cfg.Log.Level = logLevel
		case "gen":
			cfg.Batch.Generate = gen
		case "boxes":
			cfg.Batch.Boxes = boxes
		case "workers":
			cfg.Batch.Workers = workers
		case "seed":
			cfg.Batch.Seed = seed
		case "size":
			cfg.Grid.Size = size
		case "header":
			cfg.Grid.ReadHeader = &header
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log := logging.New(logging.Config{
		Service:    "haulsvc",
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	r := &runner.Runner{Logger: log, TraceDir: cfg.Trace.Dir}
	if cfg.Index.Path != "" {
		idx, err := indexdb.OpenSQLite(cfg.Index.Path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			return 1
		}
		defer idx.Close()
		r.Index = idx
	}
	if cfg.Metrics.Path != "" {
		r.Metrics = metrics.New()
		defer func() {
			if err := r.Metrics.WriteTextfile(cfg.Metrics.Path); err != nil {
				log.Error("metrics", "err", err)
			}
		}()
	}

	ctx := context.Background()
	opts := gridio.ReadOptions{Size: cfg.Grid.Size, Header: cfg.Grid.Header()}
	if cfg.Batch.Generate > 0 || flag.NArg() > 1 {
		return runBatch(ctx, r, cfg, opts, flag.Args(), log)
	}
	if in == "" && flag.NArg() == 1 {
		in = flag.Arg(0)
	}
	return runSingle(ctx, r, cfg, opts, in, log)
}

func runSingle(ctx context.Context, r *runner.Runner, cfg *config.Config, opts gridio.ReadOptions, in string, log *slog.Logger) int {
	var (
		g      *gridio.Grid
		err    error
		source = "stdin"
	)
	if in != "" {
		source = filepath.Base(in)
		g, err = gridio.ReadFile(in, opts)
	} else {
		g, err = gridio.Read(os.Stdin, opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	o, err := r.Solve(ctx, runner.NewRunID(), source, g, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := writeTo(cfg.Output.Path, func(w io.Writer) error { return gridio.WriteActions(w, o.Actions) }); err != nil {
		fmt.Fprintln(os.Stderr, "output:", err)
		return 1
	}
	if cfg.Report.Path != "" {
		if err := report.Write(cfg.Report.Path, o.Report, cfg.Report.ShouldValidate()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if o.Stuck() {
		log.Warn("not every box could be delivered", "err", o.Err, "remaining", o.Report.Remaining)
		return exitStuck
	}
	return 0
}

type job struct {
	source string
	load   func() (*gridio.Grid, error)
}

func runBatch(ctx context.Context, r *runner.Runner, cfg *config.Config, opts gridio.ReadOptions, files []string, log *slog.Logger) int {
	var jobs []job
	for _, path := range files {
		jobs = append(jobs, job{source: filepath.Base(path), load: func() (*gridio.Grid, error) {
			return gridio.ReadFile(path, opts)
		}})
	}
	for i := 0; i < cfg.Batch.Generate; i++ {
		s := util.Derive(cfg.Batch.Seed, i)
		jobs = append(jobs, job{source: fmt.Sprintf("gen-%d", s), load: func() (*gridio.Grid, error) {
			return gridio.Generate(util.New(s), cfg.Grid.Size, cfg.Batch.Boxes), nil
		}})
	}

	reports := make([]*report.Report, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Batch.Workers)
	for i, j := range jobs {
		eg.Go(func() error {
			g, err := j.load()
			if err != nil {
				log.Error("load failed", "source", j.source, "err", err)
				return nil
			}
			o, err := r.Solve(ctx, runner.NewRunID(), j.source, g, nil)
			if err != nil {
				// Sink failures abort the batch; the index or trace dir is broken.
				return fmt.Errorf("%s: %w", j.source, err)
			}
			reports[i] = &o.Report
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var sum report.Summary
	for _, rep := range reports {
		if rep == nil {
			sum.AddFailure()
			continue
		}
		sum.Add(*rep)
	}
	if err := writeTo(cfg.Output.Path, func(w io.Writer) error {
		_, err := w.Write(append(report.MarshalPretty(sum), '\n'))
		return err
	}); err != nil {
		fmt.Fprintln(os.Stderr, "output:", err)
		return 1
	}
	log.Info("batch done", "runs", sum.Runs, "stuck", sum.Stuck, "failed", sum.Failed, "avg_actions", sum.AvgActions)
	if sum.Stuck > 0 {
		return exitStuck
	}
	return 0
}

func writeTo(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
