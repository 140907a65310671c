// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"time"
)

const (
	// StatusExecuted marks an invocation that ran and succeeded.
	StatusExecuted RecordStatus = iota + 1
	// StatusSkipped marks an invocation deliberately not run.
	StatusSkipped
)

type (
	// RecordStatus is the outcome of a recorded invocation.
	RecordStatus int

	// Record is one accounted-for invocation.
	Record struct {
		Module   string
		Features []string
		Status   RecordStatus
		Duration time.Duration
	}

	// Log is the append-only list of records of a single run. It is owned by
	// one Runner and never shared between goroutines.
	Log struct {
		records []Record
	}
)

// String returns "executed" or "skipped".
func (s RecordStatus) String() string {
	switch s {
	case StatusExecuted:
		return "executed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

func (l *Log) append(r Record) {
	l.records = append(l.records, r)
}

// Records returns a copy of the records in append order.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	return len(l.records)
}

// Modules returns the set of module names that have at least one record.
func (l *Log) Modules() map[string]struct{} {
	set := make(map[string]struct{}, len(l.records))
	for _, r := range l.records {
		set[r.Module] = struct{}{}
	}
	return set
}

// Count returns the number of records with the given status.
func (l *Log) Count(s RecordStatus) int {
	n := 0
	for _, r := range l.records {
		if r.Status == s {
			n++
		}
	}
	return n
}
