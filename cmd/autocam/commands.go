package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/autocam/internal/config"
	"github.com/ivlev/autocam/internal/engine"
	"github.com/ivlev/autocam/internal/project"
)

const projectsDir = "projects"

func newSegmentsCmd(a *app) *cobra.Command {
	var (
		eventsPath string
		videoPath  string
		durationMs int64
		aspect     string
		mode       string
		out        string
	)
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Direct a recording and write its project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			ratio, err := parseAspect(aspect)
			if err != nil {
				return err
			}
			if mode != "" {
				m, err := config.ParseActivationMode(mode)
				if err != nil {
					return err
				}
				a.cfg.Camera = a.cfg.Camera.WithTriggerMode(m)
			}
			if out == "" {
				out = project.GeneratePath(projectsDir, time.Now())
			}

			p, err := a.pipeline()
			if err != nil {
				return err
			}
			res, err := p.Segments(cmd.Context(), engine.SegmentsRequest{
				EventsPath: eventsPath,
				DurationMs: durationMs,
				Aspect:     ratio,
				VideoPath:  videoPath,
				OutPath:    out,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[+] %d segments -> %s\n", len(res.Project.Timeline.ZoomSegments), res.OutPath)
			a.report(cmd, 1, len(res.Project.Timeline.ZoomSegments), start)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&eventsPath, "events", "events.json", "events.json of the recording")
	f.StringVar(&videoPath, "video", "", "recorded video referenced by the project")
	f.Int64Var(&durationMs, "duration-ms", 0, "recording length (default: last event)")
	f.StringVar(&aspect, "aspect", "", "export aspect, e.g. 16:9 (default: export size)")
	f.StringVar(&mode, "mode", "", "activation mode preset: single-click, multi-click-window, ctrl-click")
	f.StringVarP(&out, "out", "o", "", "project file, .yaml or .json (default: "+projectsDir+"/project_<time>.yaml)")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		projectPath      string
		sourcePath       string
		sourceDurationMs int64
		preset           string
		width, height    int
		fps              int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the ffmpeg filter graph of a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			if p, ok := presets[preset]; ok {
				a.cfg.Export.Width, a.cfg.Export.Height = p[0], p[1]
			} else if preset != "" {
				return fmt.Errorf("unknown preset %q", preset)
			}
			if width > 0 {
				a.cfg.Export.Width = width
			}
			if height > 0 {
				a.cfg.Export.Height = height
			}
			if fps > 0 {
				a.cfg.Export.FPS = fps
			}
			if projectPath == "" {
				latest, err := project.FindLatest(projectsDir)
				if err != nil {
					return fmt.Errorf("no project given: %w", err)
				}
				projectPath = latest
				a.logger.Info("Using latest project", zap.String("path", latest))
			}

			p, err := a.pipeline()
			if err != nil {
				return err
			}
			res, err := p.Export(cmd.Context(), engine.ExportRequest{
				ProjectPath:      projectPath,
				SourcePath:       sourcePath,
				SourceDurationMs: sourceDurationMs,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Filter)
			a.report(cmd, 1, 0, start)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&projectPath, "project", "p", "", "project file (default: latest in "+projectsDir+"/)")
	f.StringVar(&sourcePath, "source", "", "source video to probe for size and duration")
	f.Int64Var(&sourceDurationMs, "source-duration-ms", 0, "source duration override")
	f.StringVar(&preset, "preset", "", "output preset: 16:9, 9:16, 4:5, 1:1")
	f.IntVar(&width, "width", 0, "output width")
	f.IntVar(&height, "height", 0, "output height")
	f.IntVar(&fps, "fps", 0, "output frame rate")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		dir     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Direct every " + engine.EventsFileName + " under a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			if workers <= 0 {
				workers = a.cfg.Workers
			}
			paths, err := engine.FindRecordings(dir)
			if err != nil {
				return err
			}
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			var failed, segments int
			for _, r := range p.Batch(cmd.Context(), paths, workers) {
				if r.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "[!] %s: %v\n", r.EventsPath, r.Err)
					continue
				}
				segments += len(r.Result.Project.Timeline.ZoomSegments)
				fmt.Fprintf(cmd.OutOrStdout(), "[+] %s: %d segments -> %s\n",
					filepath.Dir(r.EventsPath), len(r.Result.Project.Timeline.ZoomSegments), r.Result.OutPath)
			}
			a.report(cmd, len(paths), segments, start)
			if failed > 0 {
				return fmt.Errorf("%d of %d recordings failed", failed, len(paths))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "recordings", "directory searched recursively")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent recordings (default: config workers)")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	var write string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if write != "" {
				return config.Write(a.cfg, write)
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&write, "write", "", "write the configuration to this file instead")
	return cmd
}
