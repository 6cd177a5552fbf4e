// Package logrus adapts sirupsen/logrus to logger.Logger
package logrus

import (
	"io"
	"os"

	"github.com/raykavin/chartdraw/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Config selects level and layout of a logrus logger
type Config struct {
	Level      string
	TimeLayout string
	JSON       bool
	Output     io.Writer
}

// New builds a logrus logger wrapped in the logger.Logger adapter
func New(cfg Config) (*Adapter, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	if cfg.Output != nil {
		log.SetOutput(cfg.Output)
	}

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: cfg.TimeLayout})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: cfg.TimeLayout,
		})
	}

	return &Adapter{logrus.NewEntry(log)}, nil
}

// Adapter exposes a logrus entry as logger.Logger
type Adapter struct {
	*logrus.Entry
}

func (l *Adapter) WithField(key string, value any) logger.Logger {
	return &Adapter{l.Entry.WithField(key, value)}
}

func (l *Adapter) WithFields(fields map[string]any) logger.Logger {
	return &Adapter{l.Entry.WithFields(fields)}
}

func (l *Adapter) WithError(err error) logger.Logger {
	return &Adapter{l.Entry.WithError(err)}
}

// SetLevel changes the level of the underlying logrus.Logger, shared by
// every adapter derived from it.
func (l *Adapter) SetLevel(level logger.Level) {
	if level == logger.Disabled {
		l.Logger.SetOutput(io.Discard)
		return
	}
	if lv, ok := toLogrus[level]; ok {
		l.Logger.SetLevel(lv)
	}
}

func (l *Adapter) GetLevel() logger.Level {
	if l.Logger.Out == io.Discard {
		return logger.Disabled
	}
	for level, lv := range toLogrus {
		if lv == l.Logger.GetLevel() {
			return level
		}
	}
	return logger.NoLevel
}

var toLogrus = map[logger.Level]logrus.Level{
	logger.TraceLevel: logrus.TraceLevel,
	logger.DebugLevel: logrus.DebugLevel,
	logger.InfoLevel:  logrus.InfoLevel,
	logger.WarnLevel:  logrus.WarnLevel,
	logger.ErrorLevel: logrus.ErrorLevel,
	logger.FatalLevel: logrus.FatalLevel,
	logger.PanicLevel: logrus.PanicLevel,
}

var _ logger.Logger = (*Adapter)(nil)
