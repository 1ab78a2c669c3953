package transcode

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"winnow/internal/config"
	"winnow/internal/media/ffprobe"
	"winnow/internal/registry"
	"winnow/internal/services"
	"winnow/internal/services/handbrake"
)

type fakeProber struct {
	result ffprobe.Result
	err    error
}

func (p fakeProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return p.result, p.err
}

type fakeHandle struct {
	events chan handbrake.Event

	mu      sync.Mutex
	cancels int
}

func (h *fakeHandle) Events() <-chan handbrake.Event {
	return h.events
}

func (h *fakeHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancels++
}

func (h *fakeHandle) cancelCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancels
}

type fakeEncoder struct {
	handle  *fakeHandle
	err     error
	started chan struct{}

	mu   sync.Mutex
	opts handbrake.EncodeOptions
	runs int
}

func (e *fakeEncoder) Start(ctx context.Context, opts handbrake.EncodeOptions) (handbrake.Handle, error) {
	e.mu.Lock()
	e.opts = opts
	e.runs++
	e.mu.Unlock()
	if e.started != nil {
		close(e.started)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.handle, nil
}

func (e *fakeEncoder) startCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func h264Probe() ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{Index: 0, CodecType: "video", CodecName: "h264", Profile: "High", Width: 1920, Height: 1080},
			{Index: 1, CodecType: "audio", CodecName: "aac", Channels: 6},
		},
		Format: ffprobe.Format{FormatName: "matroska,webm"},
	}
}

func bufferedHandle(events ...handbrake.Event) *fakeHandle {
	handle := &fakeHandle{events: make(chan handbrake.Event, len(events))}
	for _, ev := range events {
		handle.events <- ev
	}
	close(handle.events)
	return handle
}

func TestRunSkipsCompliantSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.Format = "mkv"
	cfg.Target.VideoCodec = "x264"

	encoder := &fakeEncoder{}
	orch := New(context.Background(), cfg, Deps{
		Encoder: encoder,
		Prober:  fakeProber{result: h264Probe()},
	})

	job, err := orch.Run(context.Background(), "/media/movie.mkv")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.DestinationPath != "" {
		t.Fatalf("skipped job should have no destination, got %q", job.DestinationPath)
	}
	if encoder.startCount() != 0 {
		t.Fatal("encoder should not start for a compliant source")
	}
}

func TestRunEncodesNonCompliantSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.VideoCodec = "x265"

	encoder := &fakeEncoder{handle: bufferedHandle(
		handbrake.Event{Kind: handbrake.EventProgress, Progress: handbrake.Progress{Task: "Encoding", Percent: 50}},
		handbrake.Event{Kind: handbrake.EventComplete},
	)}
	orch := New(context.Background(), cfg, Deps{
		Encoder: encoder,
		Prober:  fakeProber{result: h264Probe()},
	})

	job, err := orch.Run(context.Background(), "/media/movie.avi")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := filepath.Join(cfg.Paths.OutputDir, "movie.mkv")
	if job.DestinationPath != want {
		t.Fatalf("destination = %q, want %q", job.DestinationPath, want)
	}
	if encoder.opts.Input != "/media/movie.avi" || encoder.opts.Output != want {
		t.Fatalf("encoder got input %q output %q", encoder.opts.Input, encoder.opts.Output)
	}
}

func TestRunProbeFailure(t *testing.T) {
	cfg := testConfig(t)
	encoder := &fakeEncoder{}
	orch := New(context.Background(), cfg, Deps{
		Encoder: encoder,
		Prober:  fakeProber{err: errors.New("ffprobe exploded")},
	})

	_, err := orch.Run(context.Background(), "/media/movie.mkv")
	if !errors.Is(err, services.ErrProbe) {
		t.Fatalf("expected probe error, got %v", err)
	}
	if encoder.startCount() != 0 {
		t.Fatal("encoder should not start after a probe failure")
	}
}

func TestRunNoVideoStream(t *testing.T) {
	cfg := testConfig(t)
	probe := ffprobe.Result{
		Streams: []ffprobe.Stream{{Index: 0, CodecType: "audio", CodecName: "flac"}},
		Format:  ffprobe.Format{FormatName: "flac"},
	}
	orch := New(context.Background(), cfg, Deps{
		Encoder: &fakeEncoder{},
		Prober:  fakeProber{result: probe},
	})

	_, err := orch.Run(context.Background(), "/media/album.flac")
	if !errors.Is(err, services.ErrNoVideoStream) {
		t.Fatalf("expected no-video-stream error, got %v", err)
	}
}

func TestRunWorkerFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.VideoCodec = "x265"

	encoder := &fakeEncoder{handle: bufferedHandle(
		handbrake.Event{Kind: handbrake.EventProgress, Progress: handbrake.Progress{Task: "Encoding", Percent: 10}},
		handbrake.Event{Kind: handbrake.EventError, Err: errors.New("handbrake reported work error 3")},
	)}
	orch := New(context.Background(), cfg, Deps{
		Encoder: encoder,
		Prober:  fakeProber{result: h264Probe()},
	})

	job, err := orch.Run(context.Background(), "/media/movie.mkv")
	if !errors.Is(err, services.ErrWorker) {
		t.Fatalf("expected worker error, got %v", err)
	}
	if job.DestinationPath != "" {
		t.Fatalf("failed job should have no destination, got %q", job.DestinationPath)
	}
}

func TestRunStartFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.VideoCodec = "x265"

	orch := New(context.Background(), cfg, Deps{
		Encoder: &fakeEncoder{err: errors.New("binary not found")},
		Prober:  fakeProber{result: h264Probe()},
	})

	_, err := orch.Run(context.Background(), "/media/movie.mkv")
	if !errors.Is(err, services.ErrWorker) {
		t.Fatalf("expected worker error, got %v", err)
	}
}

func TestKillCancelsRunningJob(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.VideoCodec = "x265"

	handle := &fakeHandle{events: make(chan handbrake.Event)}
	encoder := &fakeEncoder{handle: handle, started: make(chan struct{})}
	reg := registry.New()
	orch := New(context.Background(), cfg, Deps{
		Registry: reg,
		Encoder:  encoder,
		Prober:   fakeProber{result: h264Probe()},
	})

	type outcome struct {
		job *Job
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		job, err := orch.Run(context.Background(), "/media/movie.mkv")
		done <- outcome{job, err}
	}()

	select {
	case <-encoder.started:
	case <-time.After(2 * time.Second):
		t.Fatal("encoder never started")
	}

	// First tick is observed while the job is still registered.
	handle.events <- handbrake.Event{Kind: handbrake.EventProgress, Progress: handbrake.Progress{Task: "Encoding", Percent: 5}}

	active := reg.Active()
	if len(active) != 1 {
		t.Fatalf("expected one active job, got %d", len(active))
	}
	orch.Kill(active[0])

	// The next tick is where cancellation is noticed.
	handle.events <- handbrake.Event{Kind: handbrake.EventProgress, Progress: handbrake.Progress{Task: "Encoding", Percent: 10}}

	var got outcome
	select {
	case got = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	close(handle.events)

	if !errors.Is(got.err, services.ErrCancelled) {
		t.Fatalf("expected cancelled error, got %v", got.err)
	}
	if got := handle.cancelCount(); got != 1 {
		t.Fatalf("worker cancel invoked %d times, want exactly once", got)
	}
	if got.job.DestinationPath != "" {
		t.Fatalf("cancelled job should have no destination, got %q", got.job.DestinationPath)
	}
	if reg.Contains(got.job.ID) {
		t.Fatal("job should be deregistered after Run returns")
	}
}

func TestKillBeforeFirstTickCancelsOnNextTick(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.VideoCodec = "x265"

	handle := &fakeHandle{events: make(chan handbrake.Event)}
	encoder := &fakeEncoder{handle: handle, started: make(chan struct{})}
	orch := New(context.Background(), cfg, Deps{
		Encoder: encoder,
		Prober:  fakeProber{result: h264Probe()},
	})

	job := NewJob("/media/movie.mkv")
	done := make(chan error, 1)
	go func() {
		_, err := orch.Start(context.Background(), job)
		done <- err
	}()

	select {
	case <-encoder.started:
	case <-time.After(2 * time.Second):
		t.Fatal("encoder never started")
	}

	orch.Kill(job.ID)
	handle.events <- handbrake.Event{Kind: handbrake.EventProgress, Progress: handbrake.Progress{Task: "Encoding", Percent: 1}}

	select {
	case err := <-done:
		if !errors.Is(err, services.ErrCancelled) {
			t.Fatalf("expected cancelled error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
	close(handle.events)

	if got := handle.cancelCount(); got != 1 {
		t.Fatalf("worker cancel invoked %d times, want exactly once", got)
	}
}

func TestKillUnknownIDIsNoop(t *testing.T) {
	cfg := testConfig(t)
	orch := New(context.Background(), cfg, Deps{
		Encoder: &fakeEncoder{},
		Prober:  fakeProber{result: h264Probe()},
	})

	orch.Kill(registry.ID("not-a-job"))

	cfg.Target.VideoCodec = ""
	cfg.Target.Format = "mkv"
	job, err := orch.Run(context.Background(), "/media/movie.mkv")
	if err != nil {
		t.Fatalf("Run after stray Kill: %v", err)
	}
	if job == nil {
		t.Fatal("expected a job")
	}
}

func TestDestinationPathSwapsExtension(t *testing.T) {
	cfg := testConfig(t)

	cases := []struct {
		source string
		format string
		want   string
	}{
		{"/media/movie.avi", "mkv", "movie.mkv"},
		{"/media/show.S01E01.mp4", "mkv", "show.S01E01.mkv"},
		{"/media/clip.webm", "mp4", "clip.mp4"},
		{"/media/noext", "", "noext.mkv"},
	}
	for _, tc := range cases {
		cfg.Encode.OutputFormat = tc.format
		got := destinationPath(cfg, tc.source)
		want := filepath.Join(cfg.Paths.OutputDir, tc.want)
		if got != want {
			t.Errorf("destinationPath(%q, format %q) = %q, want %q", tc.source, tc.format, got, want)
		}
	}
}
