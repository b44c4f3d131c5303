package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger builds the one "Cold start complete" line each entry point
// writes after initialization. Register where secrets come from, never
// their values.
type StartupLogger struct {
	name         string
	commitHash   string
	buildTime    string
	initDuration time.Duration

	ssmParams map[string]string
	features  map[string]bool
	config    map[string]string
}

// NewStartupLogger starts a summary for the named entry point, such as
// "enhance-lambda".
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:      name,
		ssmParams: make(map[string]string),
		features:  make(map[string]bool),
		config:    make(map[string]string),
	}
}

// CommitHash sets the -ldflags commit hash.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// BuildTime sets the -ldflags build timestamp.
func (s *StartupLogger) BuildTime(t string) *StartupLogger {
	s.buildTime = t
	return s
}

// SSMParam records the Parameter Store path a secret was read from.
func (s *StartupLogger) SSMParam(label, path string) *StartupLogger {
	s.ssmParams[label] = path
	return s
}

// Feature records whether an optional capability is on.
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config records a non-secret setting.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records the time spent before the entry point could serve.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits the summary as one INFO event. Empty sections are omitted.
func (s *StartupLogger) Log() {
	process := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Str("logLevel", zerolog.GlobalLevel().String())
	for key, env := range lambdaEnv {
		if v := os.Getenv(env); v != "" {
			process = process.Str(key, v)
		}
	}
	if s.commitHash != "" {
		process = process.Str("commitHash", s.commitHash)
	}
	if s.buildTime != "" {
		process = process.Str("buildTime", s.buildTime)
	}

	evt := log.Info().Dict("process", process)
	if len(s.ssmParams) > 0 {
		evt = evt.Dict("ssmParams", dict(s.ssmParams, (*zerolog.Event).Str))
	}
	if len(s.features) > 0 {
		evt = evt.Dict("features", dict(s.features, (*zerolog.Event).Bool))
	}
	if len(s.config) > 0 {
		evt = evt.Dict("config", dict(s.config, (*zerolog.Event).Str))
	}
	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}
	evt.Msg("Cold start complete")
}

// lambdaEnv maps process fields to the Lambda runtime variables they come from.
var lambdaEnv = map[string]string{
	"functionName": "AWS_LAMBDA_FUNCTION_NAME",
	"version":      "AWS_LAMBDA_FUNCTION_VERSION",
	"region":       "AWS_REGION",
}

func dict[V any](m map[string]V, add func(*zerolog.Event, string, V) *zerolog.Event) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = add(d, k, v)
	}
	return d
}
