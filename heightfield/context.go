package heightfield

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimerLabel identifies one instrumented stage of the filtering pipeline.
type TimerLabel int

const (
	// TimerFilterLowObstacles times FilterLowHangingWalkableObstacles.
	TimerFilterLowObstacles TimerLabel = iota
	// TimerFilterBorder times FilterLedgeSpans.
	TimerFilterBorder
	// TimerFilterWalkable times FilterWalkableLowHeightSpans.
	TimerFilterWalkable
	// TimerFilterRugged times FilterRuggedSpans.
	TimerFilterRugged

	maxTimers
)

func (l TimerLabel) String() string {
	switch l {
	case TimerFilterLowObstacles:
		return "filter_low_obstacles"
	case TimerFilterBorder:
		return "filter_border"
	case TimerFilterWalkable:
		return "filter_walkable"
	case TimerFilterRugged:
		return "filter_rugged"
	}
	return "unknown"
}

// Context carries the logging and timing side channel threaded through the
// filters. Timing never affects filter results; a context built over a nil
// logger is a valid no-op sink.
type Context struct {
	log           *zap.Logger
	timersEnabled bool
	started       [maxTimers]time.Time
	accumulated   [maxTimers]time.Duration
}

// NewContext returns a context logging through log. A nil log discards all
// output.
func NewContext(log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{log: log, timersEnabled: true}
}

// Log exposes the context's logger.
func (c *Context) Log() *zap.Logger {
	return c.log
}

// EnableTimers toggles timer accumulation.
func (c *Context) EnableTimers(enabled bool) {
	c.timersEnabled = enabled
}

// ResetTimers clears all accumulated timer values.
func (c *Context) ResetTimers() {
	for i := range c.accumulated {
		c.accumulated[i] = 0
	}
}

// StartTimer begins timing the labeled stage.
func (c *Context) StartTimer(label TimerLabel) {
	if !c.timersEnabled {
		return
	}
	c.started[label] = time.Now()
}

// StopTimer ends timing the labeled stage and accumulates the elapsed time.
func (c *Context) StopTimer(label TimerLabel) {
	if !c.timersEnabled {
		return
	}
	elapsed := time.Since(c.started[label])
	c.accumulated[label] += elapsed
	c.log.Debug("timer stopped",
		zap.Stringer("label", label),
		zap.Duration("elapsed", elapsed))
}

// AccumulatedTime reports the total time recorded for the labeled stage.
func (c *Context) AccumulatedTime(label TimerLabel) time.Duration {
	return c.accumulated[label]
}

// NewFileLogger builds a production logger writing JSON lines to path with
// size-based rotation. Suitable as the logger behind a long-lived build
// context.
func NewFileLogger(path string) *zap.Logger {
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    64, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		zapcore.InfoLevel,
	)
	return zap.New(core)
}
