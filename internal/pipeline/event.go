package pipeline

import (
	"context"
	"time"
)

// RawEvent is one unprocessed observation row from the source topic: a flat
// JSON object keyed by source column name, as published by the collector.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is one canonical, QC-flagged observation destined for the
// sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// CanonicalObservation is the serialized payload of an OutputEvent: one row
// of the canonical table with its flags.
type CanonicalObservation struct {
	Time        time.Time           `json:"time"`
	Fields      map[string]*float64 `json:"fields"`
	Flags       map[string]bool     `json:"flags"`
	QCAny       bool                `json:"qc_any"`
	ProcessedAt time.Time           `json:"processed_at"`
}
