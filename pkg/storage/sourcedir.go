// Copyright (c) OpenMMLab. All rights reserved.

package storage

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// SourceBundleName is the archive name the framework containers expect
// the submit directory to point at.
const SourceBundleName = "sourcedir.tar.gz"

// UploadSourceBundle packages srcDir into a gzipped tarball and uploads
// it under prefix, returning the bundle's URI for the job's submit
// directory setting.
func (u *Uploader) UploadSourceBundle(ctx context.Context, srcDir, bucket, prefix string) (string, error) {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(PackageSource(srcDir, pw))
	}()

	key := path.Join(prefix, SourceBundleName)
	_, err := u.S3.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   pr,
	})
	if err != nil {
		// Unblock the packaging goroutine if the upload died first.
		pr.CloseWithError(err)
		return "", fmt.Errorf("upload source bundle from %s: %w", srcDir, err)
	}
	return S3URI(bucket, key), nil
}

// PackageSource writes srcDir's regular files into w as a gzipped tar
// archive with paths relative to srcDir.
func PackageSource(srcDir string, w io.Writer) error {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	err := filepath.Walk(srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("package source dir %s: %w", srcDir, err)
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}
