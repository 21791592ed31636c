package config

import (
	"errors"
	"fmt"
)

// Config is the root configuration of the autocam tools.
type Config struct {
	Camera       SmartCameraConfig `mapstructure:"camera" yaml:"camera"`
	Export       ExportConfig      `mapstructure:"export" yaml:"export"`
	Logger       LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Workers      int               `mapstructure:"workers" yaml:"workers"`
	ShowStats    bool              `mapstructure:"show_stats" yaml:"show_stats"`
	BuildVersion string            `mapstructure:"build_version" yaml:"build_version"`
}

// ExportConfig is the output format the camera is framed for.
type ExportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
	FPS    int `mapstructure:"fps" yaml:"fps"`
}

// AspectRatio returns width/height of the export frame.
func (e ExportConfig) AspectRatio() float64 {
	if e.Height <= 0 {
		return 16.0 / 9.0
	}
	return float64(e.Width) / float64(e.Height)
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // console or json
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
}

// ExportParams describes one export render: the source media and the frame
// the camera expressions are evaluated for.
type ExportParams struct {
	Width, Height             int
	FPS                       int
	SourceWidth, SourceHeight int
	SourceDurationMs          int64
	ProjectDurationMs         int64
}

// NewDefaultConfig returns the configuration used when no file is given.
func NewDefaultConfig() *Config {
	return &Config{
		Camera: ForTriggerMode(ModeMultiClickWindow),
		Export: ExportConfig{Width: 1920, Height: 1080, FPS: 30},
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "autocam",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
		},
		Workers: 4,
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Camera.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		errs = append(errs, fmt.Errorf("export.width and export.height must be positive, got %dx%d", c.Export.Width, c.Export.Height))
	}
	if c.Export.FPS <= 0 {
		errs = append(errs, fmt.Errorf("export.fps must be a positive integer"))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be a positive integer"))
	}
	switch c.Logger.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format))
	}
	return errors.Join(errs...)
}
