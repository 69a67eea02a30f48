package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"depth-band-renderer/internal/band"
	"depth-band-renderer/internal/depth"
)

// Result is delivered to the sink once per rendered frame.
type Result struct {
	Seq      uint64 // submission sequence number, starting at 1
	Image    *band.Image
	Err      error
	Duration time.Duration
}

// Sink consumes render results. It runs on the pump goroutine.
type Sink func(Result)

// Stats counts pump activity.
type Stats struct {
	Submitted int64
	Rendered  int64
	Dropped   int64
	Failed    int64
}

// Pump renders incoming depth frames at no more than a fixed rate.
// It holds a single pending frame: a frame submitted while another is
// still waiting replaces it and the older one is counted as dropped.
type Pump struct {
	interval time.Duration
	settings *Settings
	sink     Sink
	log      *slog.Logger

	mu      sync.Mutex
	pending *depth.Frame
	seq     uint64
	wake    chan struct{}

	submitted atomic.Int64
	rendered  atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewPump creates a pump targeting fps renders per second (fps <= 0
// disables throttling).
func NewPump(fps int, settings *Settings, sink Sink, log *slog.Logger) *Pump {
	var interval time.Duration
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pump{
		interval: interval,
		settings: settings,
		sink:     sink,
		log:      log,
		wake:     make(chan struct{}, 1),
	}
}

// Submit queues a frame for rendering and returns immediately. The frame
// is copied, so the caller may reuse its buffer as soon as Submit returns.
func (p *Pump) Submit(frame *depth.Frame) uint64 {
	cp := &depth.Frame{}
	if frame != nil {
		cp = frame.Clone()
	}

	p.mu.Lock()
	if p.pending != nil {
		p.dropped.Add(1)
	}
	p.pending = cp
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.submitted.Add(1)
	select {
	case p.wake <- struct{}{}:
	default:
	}
	return seq
}

// Run renders frames until ctx is cancelled. It returns ctx.Err().
func (p *Pump) Run(ctx context.Context) error {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
		}

		// Throttle: frames arriving during the wait replace the pending one.
		if wait := p.interval - time.Since(last); !last.IsZero() && wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		p.mu.Lock()
		frame, seq := p.pending, p.seq
		p.pending = nil
		p.mu.Unlock()
		if frame == nil {
			continue
		}

		last = time.Now()
		img, err := band.Render(frame, p.settings.Load())
		res := Result{Seq: seq, Image: img, Err: err, Duration: time.Since(last)}
		if err != nil {
			p.failed.Add(1)
			p.log.Warn("depth frame rejected", "seq", seq, "err", err)
		} else {
			p.rendered.Add(1)
			p.log.Debug("depth frame rendered", "seq", seq, "duration", res.Duration)
		}
		if p.sink != nil {
			p.sink(res)
		}
	}
}

// Stats returns a snapshot of the counters.
func (p *Pump) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Rendered:  p.rendered.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
	}
}
