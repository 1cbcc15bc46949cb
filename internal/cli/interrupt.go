package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a bulk operation on SIGINT or SIGTERM and tells
// the user what was kept.
type InterruptHandler struct {
	writer      io.Writer
	operation   string
	resumeHint  string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a handler for the named operation. resumeHint,
// when set, is printed after the interrupt notice.
func NewInterruptHandler(writer io.Writer, operation, resumeHint string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer:     writer,
		operation:  operation,
		resumeHint: resumeHint,
	}
}

// HandleInterrupts returns a context canceled on the first interrupt signal
// and a stop function that releases the signal subscription.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigChan:
			h.interrupt()
			cancel()
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			cancel()
		})
	}
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.interrupted {
		return
	}
	h.interrupted = true

	msg := "\n\n" + FormatWarning(h.operation+" interrupted!")
	if h.resumeHint != "" {
		msg += "\n" + FormatInfo(h.resumeHint)
	}
	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
