// Copyright (c) OpenMMLab. All rights reserved.

// Package dataset downloads public training datasets to a local
// directory ahead of the object-storage upload.
package dataset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"trainctl/logger"
)

// File is one downloadable piece of a dataset.
type File struct {
	Name   string
	URL    string
	Unpack bool // zip archives are extracted into the data dir and removed
}

// COCO2017 is the detection training set used by the Mask-RCNN and
// Faster-RCNN examples.
var COCO2017 = []File{
	{Name: "train2017.zip", URL: "http://images.cocodataset.org/zips/train2017.zip", Unpack: true},
	{Name: "val2017.zip", URL: "http://images.cocodataset.org/zips/val2017.zip", Unpack: true},
	{Name: "annotations_trainval2017.zip", URL: "http://images.cocodataset.org/annotations/annotations_trainval2017.zip", Unpack: true},
}

// Downloader fetches dataset files over HTTP.
type Downloader struct {
	Client *http.Client
}

func NewDownloader() *Downloader {
	return &Downloader{Client: &http.Client{Timeout: 6 * time.Hour}}
}

// FetchAll downloads every file into dataDir, in order. Files already
// present on disk are skipped so an interrupted run can be rerun.
func (d *Downloader) FetchAll(ctx context.Context, files []File, dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	for _, f := range files {
		if err := d.Fetch(ctx, f, dataDir); err != nil {
			return err
		}
	}
	return nil
}

// Fetch downloads one file into dataDir and unpacks it if requested.
func (d *Downloader) Fetch(ctx context.Context, f File, dataDir string) error {
	dest := filepath.Join(dataDir, f.Name)
	if _, err := os.Stat(dest); err == nil {
		logger.Logger.Info("File already present, skipping download", zap.String("file", f.Name))
	} else {
		if err := d.download(ctx, f.URL, dest); err != nil {
			return err
		}
	}

	if !f.Unpack {
		return nil
	}
	if err := extractZip(dest, dataDir); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return os.Remove(dest)
}

func (d *Downloader) download(ctx context.Context, url, dest string) error {
	logger.Logger.Info("Downloading", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	// Write to a temp name so a partial download never passes the
	// already-present check on rerun.
	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("download %s: %w", url, err)
	}

	logger.Logger.Info("Download finished", zap.String("dest", dest), zap.Int64("bytes", n))
	return os.Rename(tmp, dest)
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		// Keep entries inside destDir.
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		if err := extractEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}

	_, err = io.Copy(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}
