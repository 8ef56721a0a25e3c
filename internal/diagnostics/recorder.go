package diagnostics

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultCapacity is the number of records kept per ring.
const DefaultCapacity = 100

// ErrorRecord is a warning or error log entry.
type ErrorRecord struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Caller  string    `json:"caller,omitempty"`
}

// PerfRecord is the duration of one tracked operation.
type PerfRecord struct {
	Time     time.Time     `json:"time"`
	Op       string        `json:"op"`
	Duration time.Duration `json:"duration_ns"`
}

// Snapshot is a copy of both rings.
type Snapshot struct {
	Errors      []ErrorRecord `json:"errors"`
	Performance []PerfRecord  `json:"performance"`
}

// Recorder owns the error and performance rings of the process.
type Recorder struct {
	errors *Ring[ErrorRecord]
	perf   *Ring[PerfRecord]
	now    func() time.Time
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		errors: NewRing[ErrorRecord](capacity),
		perf:   NewRing[PerfRecord](capacity),
		now:    time.Now,
	}
}

// Hook records warn and higher entries. Pass it to zap.Hooks.
func (r *Recorder) Hook(entry zapcore.Entry) error {
	if entry.Level < zapcore.WarnLevel {
		return nil
	}

	record := ErrorRecord{
		Time:    entry.Time,
		Level:   entry.Level.String(),
		Message: entry.Message,
	}
	if entry.Caller.Defined {
		record.Caller = entry.Caller.TrimmedPath()
	}
	r.errors.Add(record)
	return nil
}

// Track starts timing op. Call the returned func when the operation ends.
func (r *Recorder) Track(op string) func() {
	started := r.now()
	return func() {
		r.perf.Add(PerfRecord{Time: started, Op: op, Duration: r.now().Sub(started)})
	}
}

func (r *Recorder) Snapshot() Snapshot {
	return Snapshot{
		Errors:      r.errors.Snapshot(),
		Performance: r.perf.Snapshot(),
	}
}

// Flush logs what was recorded and empties both rings.
func (r *Recorder) Flush(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	snap := r.Snapshot()

	var slowest PerfRecord
	for _, p := range snap.Performance {
		if p.Duration > slowest.Duration {
			slowest = p
		}
	}

	for _, e := range snap.Errors {
		l.Debug("recorded error",
			zap.Time("time", e.Time),
			zap.String("level", e.Level),
			zap.String("message", e.Message),
			zap.String("caller", e.Caller),
		)
	}

	l.Info("diagnostics flushed",
		zap.Int("errors", len(snap.Errors)),
		zap.Int("operations", len(snap.Performance)),
		zap.String("slowest_op", slowest.Op),
		zap.Duration("slowest_duration", slowest.Duration),
	)

	r.errors.Reset()
	r.perf.Reset()
}
