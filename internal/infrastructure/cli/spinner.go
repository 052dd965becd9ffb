package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/doeshing/gitbrew/internal/domain"
	"github.com/doeshing/gitbrew/internal/ports"
)

// Spinner displays an animated spinner during long operations
type Spinner struct {
	frames   []string
	interval time.Duration
	writer   io.Writer
	enabled  bool

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewSpinner creates a new spinner. A disabled spinner never draws.
func NewSpinner(w io.Writer, enabled bool) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		writer:   w,
		enabled:  enabled,
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.spin(s.stop)
}

func (s *Spinner) spin(stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	idx := 0
	for {
		fmt.Fprintf(s.writer, "\r%s ", s.frames[idx%len(s.frames)])
		idx++
		select {
		case <-stop:
			// clear the spinner line
			fmt.Fprintf(s.writer, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop stops the spinner animation and waits for the line to be cleared.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
}

// spinningCompleter shows the spinner while the model is thinking.
type spinningCompleter struct {
	next    ports.Completer
	spinner *Spinner
}

func (c spinningCompleter) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	c.spinner.Start()
	defer c.spinner.Stop()
	return c.next.Complete(ctx, messages)
}

// WithSpinner returns a decorator that wraps completers with spinner.
func WithSpinner(spinner *Spinner) func(ports.Completer) ports.Completer {
	return func(next ports.Completer) ports.Completer {
		return spinningCompleter{next: next, spinner: spinner}
	}
}
