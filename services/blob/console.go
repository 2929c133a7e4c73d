package blobsvc

import (
	"context"
	"sync"

	"github.com/examcenter/backend/core"
)

// ConsoleStore only logs deletions. It stands in for object storage in DEV and TEST.
type ConsoleStore struct {
	logger core.Logger

	mu      sync.Mutex
	Deleted []string
}

var _ core.BlobStore = (*ConsoleStore)(nil)

func NewConsoleStore(logger core.Logger) *ConsoleStore {
	return &ConsoleStore{logger: logger}
}

func (s *ConsoleStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	s.Deleted = append(s.Deleted, path)
	s.mu.Unlock()
	s.logger.Debug("blob deleted: " + path)
	return nil
}

// DeletedPaths returns a copy of every path deleted so far.
func (s *ConsoleStore) DeletedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}
