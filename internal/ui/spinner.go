// Package ui draws terminal progress for long remote lookups.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on an interactive writer. On anything
// else it prints the message once per Start and the final line on Stop.
type Spinner struct {
	out         io.Writer
	interactive bool
	interval    time.Duration

	mu      sync.Mutex
	message string
	active  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, interactive bool) *Spinner {
	return &Spinner{
		out:         out,
		interactive: interactive,
		interval:    100 * time.Millisecond,
	}
}

// Start begins spinning with message. Starting a running spinner only
// replaces its message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.active {
		return
	}
	s.active = true

	if !s.interactive {
		fmt.Fprintf(s.out, "%s...\n", message)
		return
	}

	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.spin(s.done)
}

func (s *Spinner) spin(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % len(frames) {
		select {
		case <-done:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r%s %s", frames[i], s.message)
			s.mu.Unlock()
		}
	}
}

// Update changes the message of a running spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the spinner and prints final, if non-empty, on its own line.
func (s *Spinner) Stop(final string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		close(done)
		s.wg.Wait()
	}
	if final != "" {
		fmt.Fprintln(s.out, final)
	}
}

// Run shows message while fn runs and reports its outcome.
func (s *Spinner) Run(message string, fn func() error) error {
	s.Start(message)
	err := fn()
	if err != nil {
		s.Stop("✗ " + err.Error())
	} else {
		s.Stop("")
	}
	return err
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
