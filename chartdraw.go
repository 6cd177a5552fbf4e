// Package chartdraw holds the process wide defaults shared by the
// command line tool and the chart server.
package chartdraw

import (
	"fmt"
	"io"

	"github.com/raykavin/chartdraw/pkg/logger"
	"github.com/raykavin/chartdraw/pkg/logger/logrus"
	"github.com/raykavin/chartdraw/pkg/logger/zerolog"
)

// DefaultLog is the default logger instance
var DefaultLog logger.Logger

// Logger backends
const (
	BackendZerolog = "zerolog"
	BackendLogrus  = "logrus"
)

// LogConfig selects a logger backend and its layout
type LogConfig struct {
	Backend    string
	Level      string
	TimeLayout string
	Colored    bool
	JSON       bool
	Output     io.Writer
}

// NewLogger builds a logger for the configured backend
func NewLogger(cfg LogConfig) (logger.Logger, error) {
	switch cfg.Backend {
	case BackendZerolog, "":
		log, err := zerolog.New(zerolog.Config{
			Level:      cfg.Level,
			TimeLayout: cfg.TimeLayout,
			Colored:    cfg.Colored,
			JSON:       cfg.JSON,
			Output:     cfg.Output,
		})
		if err != nil {
			return nil, err
		}
		return log, nil
	case BackendLogrus:
		log, err := logrus.New(logrus.Config{
			Level:      cfg.Level,
			TimeLayout: cfg.TimeLayout,
			JSON:       cfg.JSON,
			Output:     cfg.Output,
		})
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		return log, nil
	default:
		return nil, fmt.Errorf("unknown log backend: %s", cfg.Backend)
	}
}
