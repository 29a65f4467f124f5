package ygggo_peardb

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogCommand names the dispatch path that produced a log entry.
type LogCommand string

const (
	LogQueryCmd   LogCommand = "query"
	LogPrepareCmd LogCommand = "prepare"
	LogExecuteCmd LogCommand = "execute"
)

// LogEntry is one executed command. Query holds the display form with
// parameters substituted into the markers; the executed text is unaffected.
type LogEntry struct {
	Command  LogCommand
	Query    string
	Duration time.Duration
	Trace    []string // caller frames, outer-to-inner, as "file:line"
	When     time.Time
}

// GlobalStats aggregates the query log.
type GlobalStats struct {
	TotalQueries int64 // commands excluding prepares
	TotalTime    time.Duration
	MaxTime      time.Duration
}

// queryLog is the process-wide append-only command log.
type queryLog struct {
	mu      sync.Mutex
	entries []LogEntry
}

var globalLog queryLog

// Log appends an entry for command. params, when given, are substituted
// positionally into the ? markers of query for display only.
func Log(command LogCommand, query string, params []any, duration time.Duration) {
	entry := LogEntry{
		Command:  command,
		Query:    substituteParams(query, params),
		Duration: duration,
		Trace:    callTrace(),
		When:     time.Now(),
	}
	globalLog.mu.Lock()
	globalLog.entries = append(globalLog.entries, entry)
	globalLog.mu.Unlock()
}

// GetLogs returns the recorded entries, optionally sorted by descending
// duration. The sort is stable for equal durations.
func GetLogs(sortByDuration bool) []LogEntry {
	globalLog.mu.Lock()
	out := make([]LogEntry, len(globalLog.entries))
	copy(out, globalLog.entries)
	globalLog.mu.Unlock()
	if sortByDuration {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Duration > out[j].Duration
		})
	}
	return out
}

// GetGlobalStats aggregates total time, non-prepare command count and the
// longest single duration.
func GetGlobalStats() GlobalStats {
	globalLog.mu.Lock()
	defer globalLog.mu.Unlock()
	var s GlobalStats
	for _, e := range globalLog.entries {
		s.TotalTime += e.Duration
		if e.Command != LogPrepareCmd {
			s.TotalQueries++
		}
		if e.Duration > s.MaxTime {
			s.MaxTime = e.Duration
		}
	}
	return s
}

// ClearLogs empties the query log.
func ClearLogs() {
	globalLog.mu.Lock()
	globalLog.entries = nil
	globalLog.mu.Unlock()
}

// callTrace captures the caller path outer-to-inner as "file:line",
// excluding frames inside this library and the runtime.
func callTrace() []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var inner []string
	for {
		fr, more := frames.Next()
		if fr.Function != "" &&
			!strings.Contains(fr.Function, "ygggo_peardb") &&
			!strings.HasPrefix(fr.Function, "runtime.") &&
			!strings.HasPrefix(fr.Function, "testing.") {
			inner = append(inner, fmt.Sprintf("%s:%d", filepath.Base(fr.File), fr.Line))
		}
		if !more {
			break
		}
	}
	// frames arrive inner-to-outer, callers read them outer-to-inner
	out := make([]string, len(inner))
	for i, f := range inner {
		out[len(inner)-1-i] = f
	}
	return out
}
