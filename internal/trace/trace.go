// Package trace appends one JSON line per LLM or structured-research call
// to a local file so prompt and cost behavior can be audited after a run.
package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/cost"
)

// Call describes one outbound model call.
type Call struct {
	Caller     string
	Provider   string
	Model      string
	Operation  string
	PromptName string
	Prompt     string
	Duration   time.Duration
	Err        error
	Usage      map[string]int64
	Extras     map[string]any
}

// Recorder writes Calls to the trace file. A nil or disabled Recorder
// drops them.
type Recorder struct {
	log  *zap.Logger
	calc *cost.Calculator
}

// New opens the trace sink described by cfg. When tracing is disabled it
// returns a Recorder that records nothing.
func New(cfg config.TraceConfig) (*Recorder, error) {
	if !cfg.Enabled {
		return &Recorder{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "trace: create dir for %s", cfg.Path)
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:    "ts",
			EncodeTime: zapcore.ISO8601TimeEncoder,
		},
		OutputPaths:      []string{cfg.Path},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "trace: build logger")
	}
	return &Recorder{log: logger, calc: cost.NewCalculator(cost.DefaultRates())}, nil
}

// Record appends c. Failures are swallowed.
func (r *Recorder) Record(c Call) {
	if r == nil || r.log == nil {
		return
	}
	status, errMsg := "ok", ""
	if c.Err != nil {
		status, errMsg = "error", c.Err.Error()
	}
	usage := c.Usage
	if usage == nil {
		usage = map[string]int64{}
	}

	fields := []zap.Field{
		zap.String("caller", c.Caller),
		zap.String("provider", c.Provider),
		zap.String("model", c.Model),
		zap.String("operation", c.Operation),
		zap.String("prompt_name", c.PromptName),
		zap.String("prompt_hash", PromptHash(c.Prompt)),
		zap.Int64("duration_ms", c.Duration.Milliseconds()),
		zap.String("status", status),
		zap.String("error", errMsg),
		zap.Any("usage", usage),
		zap.Float64("cost_usd", r.calc.Call(c.Provider, c.Model, usage)),
	}
	if len(c.Extras) > 0 {
		fields = append(fields, zap.Any("extras", c.Extras))
	}
	r.log.Info("", fields...)
}

// Close flushes the sink.
func (r *Recorder) Close() error {
	if r == nil || r.log == nil {
		return nil
	}
	_ = r.log.Sync()
	return nil
}

// PromptHash is the hex sha256 of a prompt, or "" for an empty prompt.
func PromptHash(prompt string) string {
	if prompt == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
