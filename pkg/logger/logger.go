// Package logger is the logging facade used outside the drawing core.
// Backends live in the zerolog and logrus subpackages.
package logger

import (
	"fmt"
	"strings"
)

type Level int8

const (
	Disabled   Level = -1   // Disabled turns logging off
	TraceLevel Level = iota // TraceLevel is used for detailed debugging information
	DebugLevel              // DebugLevel is used for debugging information
	InfoLevel               // InfoLevel is used for informational messages
	WarnLevel               // WarnLevel is used for warnings
	ErrorLevel              // ErrorLevel is used for errors
	FatalLevel              // FatalLevel logs and exits the program
	PanicLevel              // PanicLevel logs and panics
	NoLevel                 // NoLevel logs without a level
)

var levelNames = map[Level]string{
	Disabled:   "disabled",
	TraceLevel: "trace",
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
	PanicLevel: "panic",
	NoLevel:    "",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", l)
}

// ParseLevel converts a level name like "info" or "WARN" to a Level
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	for level, levelName := range levelNames {
		if levelName == name && name != "" {
			return level, nil
		}
	}
	return NoLevel, fmt.Errorf("unknown log level: %q", s)
}

type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger

	Print(args ...any)
	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)
	Panic(args ...any)

	Printf(format string, args ...any)
	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Panicf(format string, args ...any)

	SetLevel(level Level)
	GetLevel() Level
}

// Nop returns a logger that discards everything. Panic variants still
// panic so control flow does not depend on the backend.
func Nop() Logger { return nop{} }

type nop struct{}

func (n nop) WithField(string, any) Logger { return n }
func (n nop) WithFields(map[string]any) Logger { return n }
func (n nop) WithError(error) Logger { return n }
func (nop) Print(...any) {}
func (nop) Trace(...any) {}
func (nop) Debug(...any) {}
func (nop) Info(...any) {}
func (nop) Warn(...any) {}
func (nop) Error(...any) {}
func (nop) Fatal(...any) {}
func (nop) Panic(args ...any) { panic(fmt.Sprint(args...)) }
func (nop) Printf(string, ...any) {}
func (nop) Tracef(string, ...any) {}
func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any) {}
func (nop) Warnf(string, ...any) {}
func (nop) Errorf(string, ...any) {}
func (nop) Fatalf(string, ...any) {}
func (nop) Panicf(format string, args ...any) { panic(fmt.Sprintf(format, args...)) }
func (nop) SetLevel(Level) {}
func (nop) GetLevel() Level { return Disabled }
