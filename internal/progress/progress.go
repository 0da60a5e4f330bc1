// Package progress delivers best-effort progress events from the pipeline to
// whoever is watching (console, logs, a UI). Sinks must never block the caller.
package progress

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/types"
)

// Level is the severity of a log event
type Level string

// Log levels
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// EventKind distinguishes the two event shapes
type EventKind string

// Event kinds
const (
	KindLog            EventKind = "log"
	KindRecordAnalyzed EventKind = "record_analyzed"
)

// Event represents a progress update during a run
type Event struct {
	Kind    EventKind             `json:"type"`
	Level   Level                 `json:"level,omitempty"`
	Message string                `json:"message,omitempty"`
	Record  *types.AnalyzedRecord `json:"record,omitempty"`
	At      time.Time             `json:"at"`
}

// Sink receives progress events. Implementations must return promptly.
type Sink interface {
	Log(level Level, msg string)
	RecordAnalyzed(rec types.AnalyzedRecord)
}

// Func adapts an event callback to Sink
type Func func(event Event)

// Log emits a log event
func (f Func) Log(level Level, msg string) {
	f(Event{Kind: KindLog, Level: level, Message: msg, At: time.Now()})
}

// RecordAnalyzed emits a record event
func (f Func) RecordAnalyzed(rec types.AnalyzedRecord) {
	f(Event{Kind: KindRecordAnalyzed, Record: &rec, At: time.Now()})
}

// Nop discards every event
var Nop Sink = nopSink{}

type nopSink struct{}

func (nopSink) Log(Level, string)                   {}
func (nopSink) RecordAnalyzed(types.AnalyzedRecord) {}

// OrNop returns s, or Nop when s is nil
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop
	}
	return s
}

// Channel is a buffered Sink. When the buffer is full the event is dropped
// and counted; the sender never waits for the reader.
type Channel struct {
	events  chan Event
	dropped atomic.Int64
}

// NewChannel creates a Channel with room for buffer events
func NewChannel(buffer int) *Channel {
	if buffer < 0 {
		buffer = 0
	}
	return &Channel{events: make(chan Event, buffer)}
}

// Events returns the stream of delivered events. It is never closed.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Dropped returns how many events were discarded because the buffer was full
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Channel) send(e Event) {
	select {
	case c.events <- e:
	default:
		c.dropped.Add(1)
	}
}

// Log emits a log event without blocking
func (c *Channel) Log(level Level, msg string) {
	c.send(Event{Kind: KindLog, Level: level, Message: msg, At: time.Now()})
}

// RecordAnalyzed emits a record event without blocking
func (c *Channel) RecordAnalyzed(rec types.AnalyzedRecord) {
	c.send(Event{Kind: KindRecordAnalyzed, Record: &rec, At: time.Now()})
}

// Multi fans events out to several sinks in order
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []Sink

func (m multi) Log(level Level, msg string) {
	for _, s := range m {
		s.Log(level, msg)
	}
}

func (m multi) RecordAnalyzed(rec types.AnalyzedRecord) {
	for _, s := range m {
		s.RecordAnalyzed(rec)
	}
}

// Zap writes progress events to a zap logger
type Zap struct {
	Logger *zap.Logger
}

// Log writes msg at the matching zap level
func (z Zap) Log(level Level, msg string) {
	switch level {
	case LevelError:
		z.Logger.Error(msg)
	case LevelWarn:
		z.Logger.Warn(msg)
	default:
		z.Logger.Info(msg)
	}
}

// RecordAnalyzed logs a summary of rec
func (z Zap) RecordAnalyzed(rec types.AnalyzedRecord) {
	z.Logger.Info("record analyzed",
		zap.String("record_id", rec.ID),
		zap.String("title", rec.Title),
		zap.Float64("match_score", rec.MatchScore))
}
