package logger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLogBufferDecodesZapOutput(t *testing.T) {
	buffer := NewLogBuffer(10)
	log := Init(Options{Debug: true, Buffer: buffer})

	log.Named("poller").Info("Fetch round complete",
		zap.String("group", "primary"),
		zap.Int("resources", 4),
	)
	log.Warn("Engine unreachable")

	logs := buffer.GetRecentLogs(0)
	if len(logs) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(logs))
	}

	first := logs[0]
	if first.Level != "INFO" {
		t.Errorf("Expected level INFO, got %q", first.Level)
	}
	if first.Logger != "poller" {
		t.Errorf("Expected logger name 'poller', got %q", first.Logger)
	}
	if first.Message != "Fetch round complete" {
		t.Errorf("Unexpected message: %q", first.Message)
	}
	if got := first.Fields["group"]; got != "primary" {
		t.Errorf("Expected field group=primary, got %v", got)
	}
	if first.Timestamp.IsZero() || time.Since(first.Timestamp) > time.Minute {
		t.Errorf("Timestamp not decoded from log line: %v", first.Timestamp)
	}

	second := logs[1]
	if second.Level != "WARN" {
		t.Errorf("Expected level WARN, got %q", second.Level)
	}
	if second.Logger != "" {
		t.Errorf("Expected empty logger name, got %q", second.Logger)
	}
}

func TestLogBufferKeepsMalformedLines(t *testing.T) {
	buffer := NewLogBuffer(10)

	n, err := buffer.Write([]byte("not a json line\n"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len("not a json line\n") {
		t.Errorf("Expected full write, got %d bytes", n)
	}

	logs := buffer.GetRecentLogs(0)
	if len(logs) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(logs))
	}
	if logs[0].Message != "not a json line" {
		t.Errorf("Expected raw line kept as message, got %q", logs[0].Message)
	}
}

func TestLogBufferRingBufferBehavior(t *testing.T) {
	bufferSize := 5
	buffer := NewLogBuffer(bufferSize)

	// Add more logs than buffer size
	for i := 0; i < 10; i++ {
		buffer.Add("INFO", fmt.Sprintf("Log %d", i), nil)
	}

	logs := buffer.GetRecentLogs(10)
	t.Logf("Buffer size: %d, Retrieved logs: %d", bufferSize, len(logs))

	// Should only have buffer size worth of logs in memory
	if len(logs) != bufferSize {
		t.Errorf("Expected %d logs in buffer, got %d", bufferSize, len(logs))
	}

	// Check that we have the most recent logs
	if logs[0].Message != "Log 5" {
		t.Errorf("Expected oldest kept log to be 'Log 5', got '%s'", logs[0].Message)
	}
	lastLog := logs[len(logs)-1]
	if lastLog.Message != "Log 9" {
		t.Errorf("Expected last log to be 'Log 9', got '%s'", lastLog.Message)
	}

	total, dropped := buffer.GetStats()
	if total != 10 {
		t.Errorf("Expected 10 total entries, got %d", total)
	}
	if dropped != 5 {
		t.Errorf("Expected 5 dropped entries, got %d", dropped)
	}
}

func TestLogBufferRecentLimit(t *testing.T) {
	buffer := NewLogBuffer(20)

	for i := 0; i < 10; i++ {
		buffer.Add("INFO", fmt.Sprintf("Log %d", i), nil)
	}

	logs := buffer.GetRecentLogs(3)
	if len(logs) != 3 {
		t.Fatalf("Expected 3 logs, got %d", len(logs))
	}

	// Newest window, oldest first within it
	want := []string{"Log 7", "Log 8", "Log 9"}
	for i, w := range want {
		if logs[i].Message != w {
			t.Errorf("Expected logs[%d] to be %q, got %q", i, w, logs[i].Message)
		}
	}
}

func TestLogBufferClear(t *testing.T) {
	buffer := NewLogBuffer(10)

	for i := 0; i < 3; i++ {
		buffer.Add("INFO", fmt.Sprintf("Log %d", i), nil)
	}

	buffer.Clear()

	if buffer.Len() != 0 {
		t.Errorf("Expected empty buffer after clear, got %d entries", buffer.Len())
	}
	if logs := buffer.GetRecentLogs(0); len(logs) != 0 {
		t.Errorf("Expected no logs after clear, got %d", len(logs))
	}

	// Lifetime counters survive the clear
	total, _ := buffer.GetStats()
	if total != 3 {
		t.Errorf("Expected total of 3 after clear, got %d", total)
	}

	buffer.Add("INFO", "after clear", nil)
	if buffer.Len() != 1 {
		t.Errorf("Expected 1 entry after re-add, got %d", buffer.Len())
	}
}

func TestLogBufferConcurrentAccess(t *testing.T) {
	buffer := NewLogBuffer(100)

	// Simulate concurrent log writes
	var wg sync.WaitGroup
	numGoroutines := 10
	logsPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				fields := map[string]interface{}{
					"goroutine": id,
					"iteration": j,
				}
				buffer.Add("INFO", fmt.Sprintf("Log from goroutine %d, iteration %d", id, j), fields)
			}
		}(i)
	}

	// Concurrent reads
	go func() {
		for i := 0; i < 50; i++ {
			logs := buffer.GetRecentLogs(10)
			_ = logs
			time.Sleep(time.Millisecond)
		}
	}()

	// Concurrent stats
	go func() {
		for i := 0; i < 50; i++ {
			total, dropped := buffer.GetStats()
			_ = total
			_ = dropped
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()

	total, dropped := buffer.GetStats()
	t.Logf("Total entries: %d, Dropped entries: %d", total, dropped)

	// Should have processed all logs
	expectedTotal := uint64(numGoroutines * logsPerGoroutine)
	if total != expectedTotal {
		t.Errorf("Expected %d total entries, got %d", expectedTotal, total)
	}

	// Overflow beyond the ring capacity is dropped, not lost silently
	if dropped != expectedTotal-100 {
		t.Errorf("Expected %d dropped entries, got %d", expectedTotal-100, dropped)
	}
}

func TestLogEntryFieldsLine(t *testing.T) {
	entry := LogEntry{
		Fields: map[string]interface{}{
			"mint":   "So11111111111111111111111111111111111111112",
			"amount": 1.5,
		},
	}

	line := entry.FieldsLine()
	want := "amount=1.5 mint=So11111111111111111111111111111111111111112"
	if line != want {
		t.Errorf("Expected %q, got %q", want, line)
	}

	if (LogEntry{}).FieldsLine() != "" {
		t.Error("Expected empty fields line for entry without fields")
	}
}
