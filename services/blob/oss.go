// Package blobsvc removes uploaded files from object storage.
package blobsvc

import (
	"context"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core"
)

type ossStore struct {
	bucket *oss.Bucket
}

var _ core.BlobStore = (*ossStore)(nil)

func NewOSSStore(conf *core.Config) (core.BlobStore, error) {
	client, err := oss.New(conf.OSS.Endpoint, conf.OSS.AccessKey, conf.OSS.SecretKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating oss client")
	}
	bucket, err := client.Bucket(conf.OSS.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening oss bucket")
	}
	return &ossStore{bucket: bucket}, nil
}

func (s *ossStore) Delete(ctx context.Context, path string) error {
	key := strings.TrimPrefix(path, "/")
	if err := s.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return core.NewUnavailableError(err, "deleting object "+key)
	}
	return nil
}
