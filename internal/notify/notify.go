// Package notify delivers rendered reminder messages.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
)

// ErrEmptyMessage is returned for a message with no text.
var ErrEmptyMessage = errors.New("empty message")

// Dispatcher sends one reminder message per call. Implementations do not
// retry; the caller decides what a failure means for the run.
type Dispatcher interface {
	Send(ctx context.Context, message string) error
}

// Func adapts a plain function to Dispatcher.
type Func func(ctx context.Context, message string) error

func (f Func) Send(ctx context.Context, message string) error { return f(ctx, message) }

// Writer prints each message to w followed by a separator line. It is the
// dry-run and development dispatcher.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	sep string
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, sep: "----"}
}

// NewConsole returns a Writer on stdout.
func NewConsole() *Writer {
	return NewWriter(os.Stdout)
}

func (d *Writer) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if message == "" {
		return ErrEmptyMessage
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := fmt.Fprintf(d.w, "%s\n%s\n", message, d.sep); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Memory keeps sent messages in order. Tests and the HTTP preview use it.
type Memory struct {
	mu       sync.Mutex
	messages []string
}

func (m *Memory) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if message == "" {
		return ErrEmptyMessage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *Memory) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}
