package core

import "context"

// BlobStore is any service that stores uploaded files (trainer photos, resource documents).
// Uploads happen client side; the backend only ever removes objects it no longer references.
type BlobStore interface {
	Delete(ctx context.Context, path string) error
}

// DeleteBlobQuietly removes path from store, logging failures instead of returning them.
func DeleteBlobQuietly(ctx context.Context, store BlobStore, logger Logger, path string) {
	if store == nil || path == "" {
		return
	}
	if err := store.Delete(ctx, path); err != nil {
		logger.Warn("deleting blob "+path, err)
	}
}
