package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultBufferSize is the ring capacity used when none is given.
const DefaultBufferSize = 1000

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// FieldsLine renders the structured fields as "key=value" pairs in key order.
func (e LogEntry) FieldsLine() string {
	if len(e.Fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Fields[k]))
	}
	return strings.Join(parts, " ")
}

// LogBuffer is a thread-safe ring buffer that keeps the most recent log
// entries in memory so the TUI can show them without touching the log file.
// It implements zapcore.WriteSyncer: wire it into a zap core with a JSON
// encoder and every log line is decoded back into a LogEntry.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool

	// Stats
	totalEntries   uint64
	droppedEntries uint64
}

// NewLogBuffer creates a new log buffer with the specified capacity.
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = DefaultBufferSize
	}

	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
	}
}

// Write decodes a single JSON-encoded zap log line into the ring. It never
// fails: lines that are not valid JSON are kept verbatim as the message.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	line := bytes.TrimSpace(p)
	if len(line) == 0 {
		return len(p), nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(line, &raw); err != nil {
		lb.Add("INFO", string(line), nil)
		return len(p), nil
	}

	entry := LogEntry{Timestamp: time.Now(), Level: "INFO"}

	if v, ok := raw["time"].(string); ok {
		if ts, err := time.Parse("2006-01-02T15:04:05.000Z0700", v); err == nil {
			entry.Timestamp = ts
		}
		delete(raw, "time")
	}
	if v, ok := raw["level"].(string); ok {
		entry.Level = strings.ToUpper(v)
		delete(raw, "level")
	}
	if v, ok := raw["logger"].(string); ok {
		entry.Logger = v
		delete(raw, "logger")
	}
	if v, ok := raw["msg"].(string); ok {
		entry.Message = v
		delete(raw, "msg")
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}

	lb.mu.Lock()
	lb.append(entry)
	lb.mu.Unlock()

	return len(p), nil
}

// Sync implements zapcore.WriteSyncer. The ring has nothing to flush.
func (lb *LogBuffer) Sync() error {
	return nil
}

// Add adds a new log entry to the buffer directly, bypassing zap.
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.append(LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	})
}

// append stores an entry, overwriting the oldest one once the ring is full.
// Callers must hold lb.mu.
func (lb *LogBuffer) append(entry LogEntry) {
	if lb.wrapped {
		lb.droppedEntries++
	}

	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize

	if lb.currentIndex == 0 {
		lb.wrapped = true
	}

	lb.totalEntries++
}

// GetRecentLogs returns the most recent entries, oldest first, up to limit.
// A limit of zero or less returns everything the ring holds.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	if lb.wrapped {
		count = lb.maxSize
	}
	if limit > 0 && limit < count {
		count = limit
	}
	if count == 0 {
		return nil
	}

	// Walk backwards from the newest entry, then reverse into oldest-first.
	logs := make([]LogEntry, count)
	index := lb.currentIndex
	for i := count - 1; i >= 0; i-- {
		index = (index - 1 + lb.maxSize) % lb.maxSize
		logs[i] = lb.ringBuffer[index]
	}

	return logs
}

// Len returns the number of entries currently held in the ring.
func (lb *LogBuffer) Len() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.wrapped {
		return lb.maxSize
	}
	return lb.currentIndex
}

// Clear empties the ring. Lifetime counters are preserved.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.currentIndex = 0
	lb.wrapped = false
}

// GetStats returns how many entries passed through the buffer and how many
// were overwritten before being read.
func (lb *LogBuffer) GetStats() (total, dropped uint64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries, lb.droppedEntries
}
