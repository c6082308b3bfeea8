// Package log provides structured logging for the library, backed by
// zerolog. Estimators hold a Logger obtained from GetLoggerWithName and
// attach structured fields with the key constants defined here.
package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Standard structured-log field keys.
const (
	ModelNameKey  = "model"
	ComponentKey  = "component"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	LeavesKey     = "leaves"
	AlphaKey      = "alpha"
	FoldsKey      = "folds"
	PolicyKey     = "policy"
	DurationMsKey = "duration_ms"
)

// Standard values for OperationKey and PhaseKey.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationPrune   = "prune"
	OperationSelect  = "select"

	PhaseTraining   = "training"
	PhaseInference  = "inference"
	PhaseValidation = "validation"
)

// Logger is the structured logging interface used throughout the library.
// Methods accept alternating key/value pairs after the message.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

var (
	mu     sync.RWMutex
	global = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
)

// SetupLogger configures the global log level. Accepted levels are
// "debug", "info", "warn", "error" and "disabled"; unknown values fall
// back to "info".
func SetupLogger(level string) {
	var lvl zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "disabled":
		lvl = zerolog.Disabled
	default:
		lvl = zerolog.InfoLevel
	}

	mu.Lock()
	global = global.Level(lvl)
	mu.Unlock()
}

// GetLogger returns the global zerolog logger for callers that want the
// raw zerolog API.
func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// GetLoggerWithName returns a Logger scoped to the named component.
func GetLoggerWithName(name string) Logger {
	return &zlogger{l: GetLogger().With().Str("logger", name).Logger()}
}

// LogError logs err at error level with a message, using the global logger.
func LogError(err error, msg string) {
	l := GetLogger()
	l.Error().Err(err).Msg(msg)
}

type zlogger struct {
	l zerolog.Logger
}

func (z *zlogger) Debug(msg string, keysAndValues ...interface{}) {
	z.l.Debug().Fields(pairsToMap(keysAndValues)).Msg(msg)
}

func (z *zlogger) Info(msg string, keysAndValues ...interface{}) {
	z.l.Info().Fields(pairsToMap(keysAndValues)).Msg(msg)
}

func (z *zlogger) Warn(msg string, keysAndValues ...interface{}) {
	z.l.Warn().Fields(pairsToMap(keysAndValues)).Msg(msg)
}

func (z *zlogger) Error(msg string, keysAndValues ...interface{}) {
	z.l.Error().Fields(pairsToMap(keysAndValues)).Msg(msg)
}

func (z *zlogger) With(keysAndValues ...interface{}) Logger {
	return &zlogger{l: z.l.With().Fields(pairsToMap(keysAndValues)).Logger()}
}

// pairsToMap converts alternating key/value arguments into the map form
// zerolog expects. A trailing key without a value is dropped; non-string
// keys are skipped.
func pairsToMap(kv []interface{}) map[string]interface{} {
	if len(kv) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		m[k] = kv[i+1]
	}
	return m
}
