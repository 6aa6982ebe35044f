package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// blockingHandler parks the audit worker until released so the buffer can be
// filled deterministically.
type blockingHandler struct {
	entered chan struct{}
	release chan struct{}
}

func (h *blockingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *blockingHandler) Handle(context.Context, slog.Record) error {
	h.entered <- struct{}{}
	<-h.release
	return nil
}
func (h *blockingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *blockingHandler) WithGroup(string) slog.Handler      { return h }

func TestAuditorNeverBlocks(t *testing.T) {
	handler := &blockingHandler{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	a := NewAuditor(slog.New(handler), 1)

	// First event is picked up by the worker and parks in the handler.
	a.Emit(AuditEvent{Kind: AuditLoginFailure})
	<-handler.entered

	// Second fills the buffer, third must be dropped rather than block.
	a.Emit(AuditEvent{Kind: AuditLoginFailure})
	a.Emit(AuditEvent{Kind: AuditLoginFailure})
	require.Equal(t, int64(1), a.Dropped())

	close(handler.release)
	a.Close()
}

func TestAuditorDrainsOnClose(t *testing.T) {
	var count int

	handler := slog.NewTextHandler(countingWriter{&count}, nil)
	a := NewAuditor(slog.New(handler), 8)

	for range 5 {
		a.Emit(AuditEvent{Kind: AuditTokenIssued})
	}
	a.Close()

	require.Equal(t, 5, count)
	require.Zero(t, a.Dropped())
}

type countingWriter struct {
	count *int
}

// Write is only ever called from the single audit worker goroutine.
func (w countingWriter) Write(p []byte) (int, error) {
	*w.count++
	return len(p), nil
}
