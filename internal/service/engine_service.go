package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/grachmannico95/payment-engine/internal/dispatch"
	"github.com/grachmannico95/payment-engine/internal/domain"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

// EngineService is the serving-surface orchestration: it accepts an uploaded
// transaction stream, folds it through a sharded dispatcher in the
// background, and exposes the resulting account snapshots.
type EngineService interface {
	UploadTransactions(ctx context.Context, reader io.Reader) (string, error)
	GetSnapshots(ctx context.Context, uploadID string) ([]domain.AccountSnapshot, error)
	GetUploadStatus(ctx context.Context, uploadID string) (*domain.Upload, error)
}

type engineService struct {
	repo        domain.Repository
	processor   *Processor
	logger      *logger.Logger
	dispatchCfg *dispatch.Config
}

func NewEngineService(repo domain.Repository, processor *Processor, log *logger.Logger, dispatchCfg *dispatch.Config) EngineService {
	return &engineService{
		repo:        repo,
		processor:   processor,
		logger:      log,
		dispatchCfg: dispatchCfg,
	}
}

func (s *engineService) UploadTransactions(ctx context.Context, reader io.Reader) (string, error) {
	uploadID := uuid.New().String()

	ctx = logger.WithUploadID(ctx, uploadID)

	s.logger.Info(ctx, "Creating upload record")

	if err := s.repo.CreateUpload(ctx, uploadID); err != nil {
		s.logger.Error(ctx, "Failed to create upload",
			"error", err,
		)
		return "", err
	}

	go func() {
		processCtx := logger.WithUploadID(context.Background(), uploadID)
		s.run(processCtx, uploadID, reader)
	}()

	s.logger.Info(ctx, "Upload created, processing started")

	return uploadID, nil
}

// run folds one uploaded stream to completion and persists the outcome.
func (s *engineService) run(ctx context.Context, uploadID string, reader io.Reader) {
	dispatcher := dispatch.New(s.logger, s.dispatchCfg)
	if err := dispatcher.Start(ctx); err != nil {
		s.fail(ctx, uploadID, err)
		return
	}

	stats, err := s.processor.ProcessStream(ctx, reader, dispatcher)
	if err != nil {
		s.logger.Error(ctx, "Transaction stream unreadable",
			"error", err,
		)
		// Drain what was submitted so the workers exit, then mark failure.
		if _, drainErr := dispatcher.Drain(ctx); drainErr != nil {
			s.logger.Error(ctx, "Dispatcher drain failed",
				"error", drainErr,
			)
		}
		s.fail(ctx, uploadID, err)
		return
	}

	snapshots, err := dispatcher.Drain(ctx)
	if err != nil {
		s.fail(ctx, uploadID, err)
		return
	}

	if err := s.repo.SaveSnapshots(ctx, uploadID, snapshots); err != nil {
		s.fail(ctx, uploadID, err)
		return
	}

	if err := s.repo.UpdateUploadProgress(ctx, uploadID, stats.Accepted+stats.Ignored, stats.Skipped); err != nil {
		s.logger.Error(ctx, "Failed to update upload progress",
			"error", err,
		)
	}

	status := domain.UploadStatusCompleted
	if stats.Skipped > 0 && stats.Accepted == 0 && stats.Ignored == 0 {
		status = domain.UploadStatusFailed
	}

	if err := s.repo.UpdateUploadStatus(ctx, uploadID, status); err != nil {
		s.logger.Error(ctx, "Failed to update upload status",
			"error", err,
		)
		return
	}

	s.logger.Info(ctx, "Upload processing finished",
		"status", status,
		"accounts", len(snapshots),
	)
}

func (s *engineService) fail(ctx context.Context, uploadID string, cause error) {
	s.logger.Error(ctx, "Upload processing failed",
		"error", cause,
	)
	if err := s.repo.UpdateUploadStatus(ctx, uploadID, domain.UploadStatusFailed); err != nil {
		s.logger.Error(ctx, "Failed to update upload status to failed",
			"error", err,
		)
	}
}

func (s *engineService) GetSnapshots(ctx context.Context, uploadID string) ([]domain.AccountSnapshot, error) {
	ctx = logger.WithUploadID(ctx, uploadID)

	s.logger.Debug(ctx, "Getting account snapshots")

	snapshots, err := s.repo.GetSnapshots(ctx, uploadID)
	if err != nil {
		s.logger.Error(ctx, "Failed to get account snapshots",
			"error", err,
		)
		return nil, err
	}

	return snapshots, nil
}

func (s *engineService) GetUploadStatus(ctx context.Context, uploadID string) (*domain.Upload, error) {
	ctx = logger.WithUploadID(ctx, uploadID)

	s.logger.Debug(ctx, "Getting upload status")

	upload, err := s.repo.GetUpload(ctx, uploadID)
	if err != nil {
		s.logger.Error(ctx, "Failed to get upload",
			"error", err,
		)
		return nil, err
	}

	return upload, nil
}
