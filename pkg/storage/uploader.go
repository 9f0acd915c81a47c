// Copyright (c) OpenMMLab. All rights reserved.

// Package storage moves local files into the object store the training
// service reads from.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trainctl/logger"
)

const defaultConcurrency = 8

// Uploader copies local directories into a bucket. Individual object
// uploads are delegated to the SDK's managed uploader, which handles
// multipart splitting for large files.
type Uploader struct {
	S3          s3manageriface.UploaderAPI
	Concurrency int
}

func NewUploader(sess *session.Session) *Uploader {
	return &Uploader{S3: s3manager.NewUploader(sess)}
}

// UploadStats summarizes a finished recursive upload.
type UploadStats struct {
	Files int
	Bytes int64
}

// UploadDir walks localDir and uploads every regular file under it to
// bucket, keyed by prefix plus the file's slash-separated relative
// path. Uploads run concurrently; the first failure cancels the rest.
func (u *Uploader) UploadDir(ctx context.Context, localDir, bucket, prefix string) (UploadStats, error) {
	var files, bytes int64

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(u.concurrency())

	walkErr := filepath.Walk(localDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		key := ObjectKey(prefix, rel)
		size := info.Size()

		group.Go(func() error {
			if err := u.uploadFile(ctx, p, bucket, key); err != nil {
				return err
			}
			atomic.AddInt64(&files, 1)
			atomic.AddInt64(&bytes, size)
			return nil
		})

		// Stop scheduling once an upload has failed.
		return ctx.Err()
	})

	groupErr := group.Wait()
	stats := UploadStats{Files: int(files), Bytes: bytes}
	if groupErr != nil {
		return stats, groupErr
	}
	if walkErr != nil {
		return stats, walkErr
	}

	logger.Logger.Info("Directory upload finished",
		zap.String("dir", localDir),
		zap.String("dest", "s3://"+path.Join(bucket, prefix)),
		zap.Int("files", stats.Files),
		zap.Int64("bytes", stats.Bytes))
	return stats, nil
}

func (u *Uploader) uploadFile(ctx context.Context, localPath, bucket, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = u.S3.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", localPath, bucket, key, err)
	}
	return nil
}

// ObjectKey joins a key prefix with a local relative path, normalizing
// the separators the walk produced on this platform.
func ObjectKey(prefix, rel string) string {
	return path.Join(prefix, filepath.ToSlash(rel))
}

// S3URI renders the canonical URI for a bucket and key prefix.
func S3URI(bucket, prefix string) string {
	return "s3://" + path.Join(bucket, prefix)
}

func (u *Uploader) concurrency() int {
	if u.Concurrency > 0 {
		return u.Concurrency
	}
	return defaultConcurrency
}
