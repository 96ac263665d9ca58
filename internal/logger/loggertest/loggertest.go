// Package loggertest provides test helpers for the logger package.
// Capture swaps the global logger for one that writes JSON lines into a
// buffer, and restores the previous logger when the test finishes.
package loggertest

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/schmitthub/composefixture/internal/logger"
)

// Buffer is a goroutine-safe log sink.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Output returns captured log output as a string.
func (b *Buffer) Output() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Contains reports whether the captured output contains s.
func (b *Buffer) Contains(s string) bool {
	return strings.Contains(b.Output(), s)
}

// Reset clears captured output.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Capture redirects logger.Log into a buffer at debug level for the
// duration of the test.
func Capture(t testing.TB) *Buffer {
	t.Helper()

	prev := logger.Log
	buf := &Buffer{}
	logger.Log = zerolog.New(buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { logger.Log = prev })

	return buf
}
