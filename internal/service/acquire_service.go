package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vidforge/vidforge/internal/authwait"
	"github.com/vidforge/vidforge/internal/config"
	"github.com/vidforge/vidforge/internal/domain"
	"github.com/vidforge/vidforge/internal/repository"
)

// Acquirer runs the fallback chain for one request.
type Acquirer interface {
	Acquire(ctx context.Context, req domain.DownloadRequest) (*domain.DownloadResult, error)
}

// MediaProcessor post-processes an acquired file.
type MediaProcessor interface {
	Probe(ctx context.Context, path string) *domain.MediaInfo
	Normalize(ctx context.Context, path string) bool
	Thumbnail(ctx context.Context, videoPath, thumbPath string) (string, error)
}

// AcquireService orchestrates the acquisition workflow: queue intake,
// chain execution, media normalization and history bookkeeping.
type AcquireService struct {
	chain   Acquirer
	media   MediaProcessor // nil when ffmpeg is unavailable
	jobRepo repository.JobRepository
	history repository.HistoryRepository
	pending *authwait.Store
	cfg     config.WorkerConfig
	logger  *slog.Logger
}

// NewAcquireService creates a new acquire service.
func NewAcquireService(
	chain Acquirer,
	media MediaProcessor,
	jobRepo repository.JobRepository,
	history repository.HistoryRepository,
	pending *authwait.Store,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *AcquireService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcquireService{
		chain:   chain,
		media:   media,
		jobRepo: jobRepo,
		history: history,
		pending: pending,
		cfg:     cfg,
		logger:  logger,
	}
}

// SubmitResponse is returned after submitting an acquisition.
type SubmitResponse struct {
	JobID    domain.JobID
	Platform domain.Platform
	Status   domain.JobStatus
}

// Submit validates a URL and queues it for acquisition.
func (s *AcquireService) Submit(ctx context.Context, url, userID string) (*SubmitResponse, error) {
	url = strings.TrimSpace(url)
	if url == "" || !strings.Contains(url, "://") {
		return nil, domain.ErrUnsupportedURL
	}

	req := domain.NewDownloadRequest(url, userID)
	if req.Platform == domain.PlatformUnknown {
		return nil, domain.ErrUnsupportedURL
	}

	jobID := domain.JobID("job_" + uuid.New().String()[:8])
	job := domain.NewJob(jobID, req, s.cfg.MaxRetries)
	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.logger.Info("acquisition submitted",
		"job_id", jobID,
		"platform", req.Platform,
		"url", url,
	)

	return &SubmitResponse{JobID: jobID, Platform: req.Platform, Status: job.Status}, nil
}

// Job retrieves a job by ID.
func (s *AcquireService) Job(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	return s.jobRepo.Get(ctx, id)
}

// Jobs lists known jobs, newest first.
func (s *AcquireService) Jobs(ctx context.Context, limit int) ([]*domain.Job, error) {
	return s.jobRepo.List(ctx, limit)
}

// History lists recent acquisition records, newest first.
func (s *AcquireService) History(ctx context.Context, limit int) ([]*domain.Acquisition, error) {
	return s.history.Recent(ctx, limit)
}

// Process runs the full pipeline for one request: acquire, normalize,
// probe and thumbnail, then record the outcome. Authentication-required
// failures park the request for automatic retry once fresh credentials
// arrive; callers distinguish them via errors.Is.
func (s *AcquireService) Process(ctx context.Context, req domain.DownloadRequest) (*domain.DownloadResult, error) {
	logger := s.logger.With("url", req.URL, "platform", req.Platform)

	res, err := s.chain.Acquire(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) && s.pending != nil {
			s.pending.Park(req.UserID, req.URL)
			logger.Warn("acquisition parked pending credentials", "user_id", req.UserID)
		}
		s.record(ctx, req, nil, nil, err)
		return nil, err
	}

	var info *domain.MediaInfo
	if s.media != nil {
		if s.media.Normalize(ctx, res.FilePath) {
			logger.Info("media normalized", "path", res.FilePath)
		}

		// Probe and thumbnail read the finished file independently.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			info = s.media.Probe(gctx, res.FilePath)
			return nil
		})
		g.Go(func() error {
			thumb, err := s.media.Thumbnail(gctx, res.FilePath, thumbPath(res.FilePath))
			if err != nil {
				logger.Warn("thumbnail generation failed", "error", err)
				return nil
			}
			res.ThumbPath = thumb
			return nil
		})
		g.Wait()
	}

	s.record(ctx, req, res, info, nil)
	logger.Info("acquisition completed", "strategy", res.Strategy, "path", res.FilePath)
	return res, nil
}

// record writes one history row. Bookkeeping never fails the pipeline.
func (s *AcquireService) record(ctx context.Context, req domain.DownloadRequest, res *domain.DownloadResult, info *domain.MediaInfo, procErr error) {
	if s.history == nil {
		return
	}

	acq := &domain.Acquisition{
		ID:         "acq_" + uuid.New().String()[:8],
		URL:        req.URL,
		Platform:   req.Platform,
		FinishedAt: time.Now().UTC(),
	}
	if res != nil {
		acq.Strategy = res.Strategy
		acq.FilePath = res.FilePath
		if stat, err := os.Stat(res.FilePath); err == nil {
			acq.SizeBytes = stat.Size()
		}
	}
	if info != nil {
		acq.Duration = info.Duration
	}
	if procErr != nil {
		acq.Err = procErr.Error()
	}

	if err := s.history.Record(ctx, acq); err != nil {
		s.logger.Error("failed to record acquisition", "error", err)
	}
}

func thumbPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, ".mp4") + ".jpg"
}
