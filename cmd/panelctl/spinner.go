// ABOUTME: Terminal spinner driven by the busy indicator's visibility changes
// ABOUTME: Draws on one stderr line and clears it when the last call finishes

package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

type spinner struct {
	mu   sync.Mutex
	out  io.Writer
	stop chan struct{}
	done chan struct{}
}

// toggle starts or stops the animation. It matches busy's onChange signature.
func (s *spinner) toggle(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if visible {
		if s.stop != nil {
			return
		}
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.animate(s.stop, s.done)
		return
	}

	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.out, "\r%s ", color.CyanString(spinnerFrames[i%len(spinnerFrames)]))
		select {
		case <-stop:
			fmt.Fprint(s.out, "\r  \r")
			return
		case <-ticker.C:
		}
	}
}
