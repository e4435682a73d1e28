package domain

import "context"

type Repository interface {
	// Upload management
	CreateUpload(ctx context.Context, uploadID string) error
	GetUpload(ctx context.Context, uploadID string) (*Upload, error)
	UpdateUploadStatus(ctx context.Context, uploadID string, status UploadStatus) error
	UpdateUploadProgress(ctx context.Context, uploadID string, processed, skipped int) error

	// Snapshot results
	SaveSnapshots(ctx context.Context, uploadID string, snapshots []AccountSnapshot) error
	GetSnapshots(ctx context.Context, uploadID string) ([]AccountSnapshot, error)
}
