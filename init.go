package chartdraw

import (
	"os"
	"strconv"
)

const (
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
	defaultLogBackend    = BackendZerolog
)

// Environment variable names
const (
	envLogLevel      = "CHARTDRAW_LOG_LEVEL"
	envLogTimeFormat = "CHARTDRAW_LOG_TIME_FORMAT"
	envLogColor      = "CHARTDRAW_LOG_COLOR"
	envLogJSON       = "CHARTDRAW_LOG_JSON"
	envLogBackend    = "CHARTDRAW_LOG_BACKEND"
)

func init() {
	cfg, err := logConfigFromEnv()
	if err != nil {
		panic(err)
	}

	log, err := NewLogger(cfg)
	if err != nil {
		panic(err)
	}

	DefaultLog = log
}

// logConfigFromEnv reads the logger configuration from the environment
func logConfigFromEnv() (LogConfig, error) {
	colored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return LogConfig{}, err
	}

	jsonFormat, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return LogConfig{}, err
	}

	return LogConfig{
		Backend:    getEnvWithDefault(envLogBackend, defaultLogBackend),
		Level:      getEnvWithDefault(envLogLevel, defaultLogLevel),
		TimeLayout: getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat),
		Colored:    colored,
		JSON:       jsonFormat,
	}, nil
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
