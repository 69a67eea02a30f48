package stream

import (
	"sync/atomic"

	"depth-band-renderer/internal/band"
)

// Settings holds the render config that a controlling surface (CLI,
// HTTP handler, UI) may replace at any time between frames. Each frame
// renders with one Load() snapshot, so a change never tears mid-frame.
type Settings struct {
	cfg atomic.Pointer[band.Config]
}

// NewSettings returns Settings initialized to cfg.
func NewSettings(cfg band.Config) *Settings {
	s := &Settings{}
	s.Store(cfg)
	return s
}

// Load returns the current config.
func (s *Settings) Load() band.Config {
	if p := s.cfg.Load(); p != nil {
		return *p
	}
	return band.DefaultConfig()
}

// Store replaces the config for subsequent frames.
func (s *Settings) Store(cfg band.Config) {
	s.cfg.Store(&cfg)
}

// Update applies fn to a copy of the current config and stores the result.
func (s *Settings) Update(fn func(*band.Config)) {
	for {
		old := s.cfg.Load()
		next := band.DefaultConfig()
		if old != nil {
			next = *old
		}
		fn(&next)
		if s.cfg.CompareAndSwap(old, &next) {
			return
		}
	}
}
