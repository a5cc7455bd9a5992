package browser

import (
	"sync"

	"github.com/jmylchreest/pipette/internal/capture"
	"github.com/jmylchreest/pipette/internal/colour"
)

// SurfaceState is what a page currently shows.
type SurfaceState struct {
	Overlay       bool
	SwatchVisible bool
	Swatch        capture.Point
	Fill          colour.Hex
	Confirmations []string
}

// RecordingSurface is a capture.Surface that keeps the page UI in memory.
type RecordingSurface struct {
	mu    sync.Mutex
	state SurfaceState
}

// ShowOverlay implements capture.Surface.
func (s *RecordingSurface) ShowOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Overlay = true
}

// MoveSwatch implements capture.Surface.
func (s *RecordingSurface) MoveSwatch(pos capture.Point, fill colour.Hex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SwatchVisible = true
	s.state.Swatch = pos
	if fill != "" {
		s.state.Fill = fill
	}
}

// RemoveOverlay implements capture.Surface.
func (s *RecordingSurface) RemoveOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Overlay = false
	s.state.SwatchVisible = false
	s.state.Fill = ""
}

// Confirm implements capture.Surface.
func (s *RecordingSurface) Confirm(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Confirmations = append(s.state.Confirmations, message)
}

// State returns a copy of the current page UI.
func (s *RecordingSurface) State() SurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Confirmations = append([]string(nil), s.state.Confirmations...)
	return st
}
