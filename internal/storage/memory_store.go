package storage

import (
	"context"
	"sync"
	"time"

	"github.com/grachmannico95/payment-engine/internal/domain"
)

// MemoryStore holds uploads and their projected account snapshots for the
// lifetime of the process. Nothing survives a restart; every run starts from
// an empty ledger.
type MemoryStore struct {
	uploads   map[string]*domain.Upload
	snapshots map[string][]domain.AccountSnapshot
	mu        sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		uploads:   make(map[string]*domain.Upload),
		snapshots: make(map[string][]domain.AccountSnapshot),
	}
}

func (s *MemoryStore) CreateUpload(ctx context.Context, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads[uploadID] = &domain.Upload{
		ID:        uploadID,
		Status:    domain.UploadStatusProcessing,
		CreatedAt: time.Now(),
	}

	return nil
}

func (s *MemoryStore) GetUpload(ctx context.Context, uploadID string) (*domain.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	upload, exists := s.uploads[uploadID]
	if !exists {
		return nil, domain.ErrUploadNotFound
	}

	clone := *upload
	return &clone, nil
}

func (s *MemoryStore) UpdateUploadStatus(ctx context.Context, uploadID string, status domain.UploadStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload, exists := s.uploads[uploadID]
	if !exists {
		return domain.ErrUploadNotFound
	}

	upload.Status = status
	if status == domain.UploadStatusCompleted || status == domain.UploadStatusFailed {
		now := time.Now()
		upload.CompletedAt = &now
	}

	return nil
}

func (s *MemoryStore) UpdateUploadProgress(ctx context.Context, uploadID string, processed, skipped int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload, exists := s.uploads[uploadID]
	if !exists {
		return domain.ErrUploadNotFound
	}

	upload.ProcessedRows = processed
	upload.SkippedRows = skipped

	return nil
}

func (s *MemoryStore) SaveSnapshots(ctx context.Context, uploadID string, snapshots []domain.AccountSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[uploadID]; !exists {
		return domain.ErrUploadNotFound
	}

	s.snapshots[uploadID] = snapshots

	return nil
}

// GetSnapshots returns the projected accounts of a finished upload. An
// upload still being processed yields an empty set, not an error.
func (s *MemoryStore) GetSnapshots(ctx context.Context, uploadID string) ([]domain.AccountSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.uploads[uploadID]; !exists {
		return nil, domain.ErrUploadNotFound
	}

	snapshots := s.snapshots[uploadID]
	out := make([]domain.AccountSnapshot, len(snapshots))
	copy(out, snapshots)

	return out, nil
}
