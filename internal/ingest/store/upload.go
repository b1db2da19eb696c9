package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
)

// UploadRegistry keeps the status of every upload seen by the process.
type UploadRegistry struct {
	mu      sync.RWMutex
	uploads map[string]*uploadRecord
}

type uploadRecord struct {
	mu     sync.RWMutex
	upload entity.Upload
}

func NewUploadRegistry() *UploadRegistry {
	return &UploadRegistry{
		uploads: make(map[string]*uploadRecord),
	}
}

func (s *UploadRegistry) CreateUpload(ctx context.Context, upload entity.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[upload.ID]; exists {
		return pkgerror.NewConflict("upload already exists")
	}

	s.uploads[upload.ID] = &uploadRecord{upload: upload}

	return nil
}

func (s *UploadRegistry) UpdateUpload(ctx context.Context, uploadID string, fn func(upload *entity.Upload)) error {
	rec, err := s.get(uploadID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	fn(&rec.upload)
	rec.upload.ID = uploadID

	return nil
}

func (s *UploadRegistry) GetUpload(ctx context.Context, uploadID string) (entity.Upload, error) {
	rec, err := s.get(uploadID)
	if err != nil {
		return entity.Upload{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return rec.upload, nil
}

func (s *UploadRegistry) get(uploadID string) (*uploadRecord, error) {
	s.mu.RLock()
	rec, ok := s.uploads[uploadID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
