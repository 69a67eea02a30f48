package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"depth-band-renderer/internal/band"
	"depth-band-renderer/internal/depth"
	"depth-band-renderer/internal/encode"
	"depth-band-renderer/internal/postprocess"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir     string
	ConfidenceDir string // optional; maps <stem>.{png,tga,tif,tiff}
	Band          band.Config
	AutoRange     bool
	Format        encode.Format
	Scale         int
	Smooth        bool
	Workers       int
	Logger        *slog.Logger
}

// Job is one depth file to render.
type Job struct {
	Source string // input path
	Name   string // output stem
	Dest   string // explicit output file; overrides OutputDir/Name.Format
}

// OutputPath returns where job's image is written.
func (c Config) OutputPath(job Job) string {
	if job.Dest != "" {
		return job.Dest
	}
	return filepath.Join(c.OutputDir, job.Name+"."+string(c.Format))
}

// Result holds the outcome of processing one job.
type Result struct {
	Job
	Output   string
	Width    int
	Height   int
	Stats    depth.Stats
	MinRange float64
	MaxRange float64
	Mode     band.Mode
	Success  bool
	Error    string
}

var depthExts = map[string]bool{".dbf": true, ".png": true, ".tif": true, ".tiff": true}

// Discover lists depth files directly inside dir, sorted by name.
func Discover(dir string) ([]Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	var jobs []Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !depthExts[ext] {
			continue
		}
		jobs = append(jobs, Job{
			Source: filepath.Join(dir, e.Name()),
			Name:   strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

// Run processes all jobs using a worker pool. Results keep job order.
func Run(cfg Config, jobs []Job) []Result {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", "done", p, "total", total, "frames_per_sec", fmt.Sprintf("%.1f", rate))
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				if !results[idx].Success {
					log.Warn("render failed", "source", jobs[idx].Source, "err", results[idx].Error)
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job Job) Result {
	res := Result{Job: job, Mode: band.Gray}
	if cfg.Band.UseColorMode {
		res.Mode = band.RGB
	}
	fail := func(err error) Result {
		res.Error = err.Error()
		return res
	}

	frame, err := depth.Load(job.Source)
	if err != nil {
		return fail(err)
	}
	res.Width, res.Height = frame.Width, frame.Height

	if cfg.ConfidenceDir != "" {
		if path, ok := findConfidence(cfg.ConfidenceDir, job.Name); ok {
			conf, err := depth.LoadConfidence(path)
			if err != nil {
				return fail(err)
			}
			frame.Confidence = conf
		}
	}

	bc := cfg.Band
	if err := frame.Check(); err == nil {
		res.Stats = depth.ComputeStats(frame)
		if cfg.AutoRange {
			if lo, hi, ok := res.Stats.AutoRange(); ok {
				bc.MinRangeMeters, bc.MaxRangeMeters = lo, hi
			}
		}
	}
	res.MinRange, res.MaxRange = bc.MinRangeMeters, bc.MaxRangeMeters

	img, err := band.Render(frame, bc)
	if err != nil {
		return fail(err)
	}

	out := postprocess.Upscale(img.ToImage(), cfg.Scale, cfg.Smooth)

	res.Output = cfg.OutputPath(job)
	if err := encode.Save(res.Output, out); err != nil {
		return fail(err)
	}

	res.Success = true
	return res
}

func findConfidence(dir, stem string) (string, bool) {
	for _, ext := range []string{".png", ".tga", ".tif", ".tiff"} {
		p := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
