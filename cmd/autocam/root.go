package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/engine"
	"github.com/ivlev/autocam/internal/observability"
	"github.com/ivlev/autocam/internal/system"
)

const benchmarkLog = "benchmark.log"

// app is the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	logLevel string
	stats    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "autocam",
		Short:         "Automatic camera for screen recordings",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			observability.Sync()
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.BoolVar(&a.stats, "stats", false, "print a performance report and append it to "+benchmarkLog)

	root.AddCommand(
		newSegmentsCmd(a),
		newExportCmd(a),
		newBatchCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logger.Level = a.logLevel
	}
	if a.stats {
		cfg.ShowStats = true
	}
	cfg.BuildVersion = version
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	system.InitResourceLimits(a.logger)
	return nil
}

func (a *app) pipeline() (*engine.Pipeline, error) {
	return engine.NewPipeline(a.cfg, a.logger)
}

// report prints the performance report when --stats is on.
func (a *app) report(cmd *cobra.Command, recordings, segments int, start time.Time) {
	if !a.cfg.ShowStats {
		return
	}
	r := engine.NewReport(a.cfg.BuildVersion, cmd.Name(), recordings, segments, time.Since(start))
	fmt.Fprint(cmd.ErrOrStderr(), r.String())
	if err := r.AppendBenchmark(benchmarkLog, time.Now()); err != nil {
		a.logger.Warn("Benchmark log not written", zap.Error(err))
	}
}

// presets are named output frames.
var presets = map[string][2]int{
	"16:9": {1920, 1080},
	"9:16": {1080, 1920},
	"4:5":  {1080, 1350},
	"1:1":  {1080, 1080},
}

// parseAspect accepts "W:H" or a plain ratio such as "1.7778".
func parseAspect(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	if w, h, ok := strings.Cut(s, ":"); ok {
		fw, errW := strconv.ParseFloat(w, 64)
		fh, errH := strconv.ParseFloat(h, 64)
		if errW != nil || errH != nil || fw <= 0 || fh <= 0 {
			return 0, fmt.Errorf("invalid aspect %q", s)
		}
		return fw / fh, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid aspect %q", s)
	}
	return v, nil
}
