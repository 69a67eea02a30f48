package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"depth-band-renderer/internal/batch"
	"depth-band-renderer/internal/depth"
	"depth-band-renderer/internal/encode"
	"depth-band-renderer/internal/postprocess"
	"depth-band-renderer/internal/stream"
)

// replay feeds frames at sourceFPS into a pump rendering at renderFPS,
// the way a sensor feeds the on-device preview. Frames the renderer
// cannot keep up with are dropped.
func replay(cfg batch.Config, jobs []batch.Job, sourceFPS, renderFPS int, log *slog.Logger) error {
	if sourceFPS <= 0 {
		sourceFPS = 60
	}

	var mu sync.Mutex
	pending := make(map[uint64]batch.Job, len(jobs))
	var saveErr error

	settings := stream.NewSettings(cfg.Band)
	pump := stream.NewPump(renderFPS, settings, func(r stream.Result) {
		if r.Err != nil {
			return
		}
		mu.Lock()
		job := pending[r.Seq]
		mu.Unlock()

		out := postprocess.Upscale(r.Image.ToImage(), cfg.Scale, cfg.Smooth)
		if err := encode.Save(cfg.OutputPath(job), out); err != nil {
			mu.Lock()
			saveErr = err
			mu.Unlock()
		}
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		pump.Run(ctx)
		close(done)
	}()

	tick := time.NewTicker(time.Second / time.Duration(sourceFPS))
	defer tick.Stop()
	for _, job := range jobs {
		<-tick.C
		frame, err := depth.Load(job.Source)
		if err != nil {
			log.Warn("skipping frame", "source", job.Source, "err", err)
			continue
		}
		// Hold the lock across Submit so the sink never sees an unknown seq.
		mu.Lock()
		seq := pump.Submit(frame)
		pending[seq] = job
		mu.Unlock()
	}

	// Let the last pending frame render.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st := pump.Stats()
		if st.Rendered+st.Dropped+st.Failed >= st.Submitted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	st := pump.Stats()
	fmt.Printf("Stream: submitted=%d rendered=%d dropped=%d failed=%d\n",
		st.Submitted, st.Rendered, st.Dropped, st.Failed)
	return saveErr
}
