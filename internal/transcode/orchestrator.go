package transcode

import (
	"context"
	"log/slog"

	"winnow/internal/config"
	"winnow/internal/decision"
	"winnow/internal/journal"
	"winnow/internal/logging"
	"winnow/internal/media/ffprobe"
	"winnow/internal/profile"
	"winnow/internal/registry"
	"winnow/internal/services"
	"winnow/internal/services/handbrake"
)

// Prober inspects a media file. Satisfied by the ffprobe wrapper; tests
// substitute a fake.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

type ffprobeProber struct {
	binary string
}

func (p ffprobeProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.binary, path)
}

// Deps carries the collaborators an Orchestrator needs. Nil fields are
// replaced with production defaults built from the configuration; Journal is
// optional and persistence is skipped when it is nil.
type Deps struct {
	Logger   *slog.Logger
	Registry *registry.Registry
	Journal  *journal.Store
	Encoder  handbrake.Client
	Exporter handbrake.PresetExporter
	Prober   Prober
}

// Orchestrator runs jobs end to end: probe, decide, encode, supervise. The
// preset-derived profile is resolved once at construction; explicit
// configuration overrides shadow it per concern.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *registry.Registry
	journal  *journal.Store
	encoder  handbrake.Client
	prober   Prober
	preset   profile.TargetProfile
	override profile.TargetProfile
}

// New constructs an orchestrator, resolving the configured preset up front so
// every job compares against the same target profile.
func New(ctx context.Context, cfg *config.Config, deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "transcode")

	reg := deps.Registry
	if reg == nil {
		reg = registry.New()
	}
	encoder := deps.Encoder
	if encoder == nil {
		encoder = handbrake.NewCLI(handbrake.WithBinary(cfg.HandBrakeBinary()))
	}
	exporter := deps.Exporter
	if exporter == nil {
		if cli, ok := encoder.(handbrake.PresetExporter); ok {
			exporter = cli
		}
	}
	prober := deps.Prober
	if prober == nil {
		prober = ffprobeProber{binary: cfg.FFprobeBinary()}
	}

	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		journal:  deps.Journal,
		encoder:  encoder,
		prober:   prober,
		preset:   profile.ResolvePreset(ctx, exporter, cfg.Encode.Preset, logger),
		override: profile.FromConfig(cfg.Target),
	}
}

// Registry exposes the active-job set, for status reporting and shutdown.
func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}

// Kill requests cooperative cancellation of a running job by removing its
// identifier from the registry. The job notices on its next progress tick, so
// a worker that never reports progress again is not interrupted by this path.
// Unknown identifiers are a no-op.
func (o *Orchestrator) Kill(id registry.ID) {
	o.logger.Info("cancellation requested", logging.String(logging.FieldJobID, string(id)))
	o.registry.Remove(id)
}

// Run is the convenience path for callers that do not mint jobs themselves.
func (o *Orchestrator) Run(ctx context.Context, sourcePath string) (*Job, error) {
	return o.Start(ctx, NewJob(sourcePath))
}

// Start processes one job. The returned job carries a destination path only
// when an encode actually completed. Errors are tagged with the service
// markers so callers can classify the failure.
func (o *Orchestrator) Start(ctx context.Context, job *Job) (*Job, error) {
	sourcePath := job.SourcePath
	logger := o.logger.With(
		logging.String(logging.FieldJobID, string(job.ID)),
		logging.String(logging.FieldSource, sourcePath))

	o.registry.Add(job.ID)
	defer o.registry.Remove(job.ID)

	if o.journal != nil {
		if _, err := o.journal.Create(ctx, string(job.ID), sourcePath); err != nil {
			logger.Warn("journal create failed", logging.Error(err))
		}
	}
	logger.Info("job started")

	result, err := o.prober.Inspect(ctx, sourcePath)
	if err != nil {
		wrapped := services.Wrap(services.ErrProbe, "transcode", "inspect", "", err)
		o.finishFailed(ctx, job, logger, wrapped)
		return job, wrapped
	}

	video, ok := result.FirstVideoStream()
	if !ok {
		wrapped := services.Wrap(services.ErrNoVideoStream, "transcode", "inspect", "source has no video stream", nil)
		o.finishFailed(ctx, job, logger, wrapped)
		return job, wrapped
	}

	src := decision.Source{
		Format:  result.Format.FormatName,
		Codec:   video.CodecName,
		Profile: video.Profile,
		Height:  video.Height,
		Width:   video.Width,
	}
	if decision.ShouldSkip(src, o.preset, o.override) {
		logger.Info("source already compliant, skipping",
			logging.String("container", src.Format),
			logging.String("codec", src.Codec))
		o.record(ctx, job, logger, journal.StatusSkipped, "", "")
		return job, nil
	}

	destination := destinationPath(o.cfg, sourcePath)
	logger.Info("encode required",
		logging.String("container", src.Format),
		logging.String("codec", src.Codec),
		logging.String("destination", destination))

	handle, err := o.encoder.Start(ctx, o.encodeOptions(sourcePath, destination))
	if err != nil {
		wrapped := services.Wrap(services.ErrWorker, "transcode", "start encoder", "", err)
		o.finishFailed(ctx, job, logger, wrapped)
		return job, wrapped
	}
	o.record(ctx, job, logger, journal.StatusEncoding, "", "")

	if err := o.supervise(ctx, job, logger, handle); err != nil {
		o.finishFailed(ctx, job, logger, err)
		return job, err
	}

	job.DestinationPath = destination
	o.record(ctx, job, logger, journal.StatusCompleted, destination, "")
	logger.Info("job completed", logging.String("destination", destination))
	return job, nil
}

// supervise drains the worker event stream. Registry membership is polled on
// every progress tick; a missing identifier cancels the worker and abandons
// the stream without waiting for its terminal event.
func (o *Orchestrator) supervise(ctx context.Context, job *Job, logger *slog.Logger, handle handbrake.Handle) error {
	sampler := logging.NewProgressSampler(5)

	for event := range handle.Events() {
		switch event.Kind {
		case handbrake.EventProgress:
			if !o.registry.Contains(job.ID) {
				handle.Cancel()
				return services.Wrap(services.ErrCancelled, "transcode", "encode", "removed from registry", nil)
			}
			if sampler.ShouldLog(event.Progress.Percent, event.Progress.Task) {
				logger.Info("encode progress",
					logging.String("task", event.Progress.Task),
					logging.Float64("percent", event.Progress.Percent),
					logging.Float64("fps", event.Progress.Rate),
					logging.Float64("avg_fps", event.Progress.AvgRate),
					logging.Duration("eta", event.Progress.ETA))
				o.recordProgress(ctx, job, logger, event.Progress)
			}
		case handbrake.EventComplete:
			return nil
		case handbrake.EventError:
			marker := services.ErrWorker
			if ctx.Err() != nil {
				marker = services.ErrCancelled
			}
			return services.Wrap(marker, "transcode", "encode", "", event.Err)
		}
	}
	return services.Wrap(services.ErrWorker, "transcode", "encode", "event stream ended without a terminal event", nil)
}

// encodeOptions flattens the configured encode parameters onto the worker
// command line. Dimension caps come from the effective target profile so the
// worker enforces the same limits the decision engine checked.
func (o *Orchestrator) encodeOptions(sourcePath, destination string) handbrake.EncodeOptions {
	enc := o.cfg.Encode
	return handbrake.EncodeOptions{
		Input:          sourcePath,
		Output:         destination,
		Preset:         enc.Preset,
		Optimize:       enc.Optimize,
		Encoder:        enc.Encoder,
		EncoderOptions: enc.EncoderOptions,
		EncoderProfile: enc.EncoderProfile,
		Quality:        enc.Quality,
		VideoRate:      enc.VideoRate,
		PeakFrameRate:  enc.PeakFrameRate,
		MaxHeight:      effectiveDimension(o.override.MaxHeight, o.preset.MaxHeight),
		MaxWidth:       effectiveDimension(o.override.MaxWidth, o.preset.MaxWidth),
		CombDetect:     enc.CombDetect,
		Deinterlace:    enc.Deinterlace,
		Decomb:         enc.Decomb,
	}
}

func effectiveDimension(override, preset *int) int {
	if override != nil {
		return *override
	}
	if preset != nil {
		return *preset
	}
	return 0
}

func (o *Orchestrator) finishFailed(ctx context.Context, job *Job, logger *slog.Logger, err error) {
	status := services.FailureStatus(err)
	logger.Error("job ended",
		logging.String("status", string(status)),
		logging.Error(err))
	o.record(ctx, job, logger, status, "", err.Error())
}

func (o *Orchestrator) record(ctx context.Context, job *Job, logger *slog.Logger, status journal.Status, destination, message string) {
	if o.journal == nil {
		return
	}
	// Terminal statuses are still worth recording when the surrounding
	// context has been cancelled.
	if err := o.journal.SetStatus(context.WithoutCancel(ctx), string(job.ID), status, destination, message); err != nil {
		logger.Warn("journal update failed", logging.Error(err))
	}
}

func (o *Orchestrator) recordProgress(ctx context.Context, job *Job, logger *slog.Logger, p handbrake.Progress) {
	if o.journal == nil {
		return
	}
	if err := o.journal.UpdateProgress(ctx, string(job.ID), p.Percent, p.Task); err != nil {
		logger.Warn("journal progress update failed", logging.Error(err))
	}
}
