// Package spinner shows which source is being counted while tally works.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Spinner is a one-line progress indicator: a rotating frame, the current
// source and how many of the sources have been reached.
type Spinner struct {
	frames []string
	delay  time.Duration
	writer io.Writer
	total  int

	mu     sync.RWMutex // protects active, step and label
	active bool
	step   int
	label  string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a spinner for total sources.
// ctx allows for cancellation of the spinner goroutine.
func New(ctx context.Context, writer io.Writer, total int) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		frames: []string{"◜", "◠", "◝", "◞", "◡", "◟"},
		delay:  100 * time.Millisecond,
		writer: writer,
		total:  total,
		ctx:    spinnerCtx,
		cancel: cancel,
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true

	s.wg.Add(1)
	go s.run()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	// only clear the whole line on a terminal
	if f, ok := s.writer.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// IsActive returns whether the spinner is currently running
func (s *Spinner) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Step moves on to the next source.
func (s *Spinner) Step(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step < s.total {
		s.step++
	}
	s.label = label
}

// Message returns the text shown next to the frame.
func (s *Spinner) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.label == "" {
		return "Counting..."
	}
	return fmt.Sprintf("Counting %s (%d/%d)", s.label, s.step, s.total)
}

func (s *Spinner) run() {
	defer s.wg.Done()

	frameIndex := 0
	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			frame := s.frames[frameIndex%len(s.frames)]
			fmt.Fprintf(s.writer, "\r%s %s", frame, s.Message())
			frameIndex++
		}
	}
}
