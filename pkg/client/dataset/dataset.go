// Copyright (c) OpenMMLab. All rights reserved.

package dataset

import (
	"context"
	"fmt"
	"os"

	"trainctl/pkg/client/utils"
	"trainctl/pkg/dataset"
	"trainctl/pkg/prom/metrics"
	"trainctl/pkg/storage"

	"github.com/spf13/cobra"
)

// Named dataset file sets the download step knows about.
var datasets = map[string][]dataset.File{
	"coco2017": dataset.COCO2017,
}

// NewCmdDataset creates a cobra command that downloads a dataset and
// uploads it to the bucket the training jobs read from.
func NewCmdDataset() *cobra.Command {
	var skipDownload bool
	var skipUpload bool

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Download a dataset and upload it to object storage",
		Long: `Download a public dataset to a local directory and upload it to the
training bucket. The upload must complete before any job that reads the
dataset is submitted.

Usage:
  trainctl dataset --name coco2017 --data-dir ./data --bucket my-bucket --prefix coco

Example:
  trainctl dataset --name coco2017 --data-dir /mnt/data/coco -b my-training-bucket`,
		Run: func(cmd *cobra.Command, args []string) {
			name := utils.FlagOrConfig(cmd, "name")
			if name == "" {
				name = "coco2017"
				fmt.Println("No dataset name specified, using default value coco2017")
			}
			files, ok := datasets[name]
			if !ok {
				fmt.Printf("Unknown dataset %q\n", name)
				os.Exit(1)
			}

			dataDir := utils.FlagOrConfig(cmd, "data-dir")
			if dataDir == "" {
				fmt.Println("No data directory specified, using default value ./data")
				dataDir = "./data"
			}

			ctx := context.Background()

			if skipDownload {
				fmt.Println("Note: Skipping download, using existing local data")
			} else {
				d := dataset.NewDownloader()
				if err := d.FetchAll(ctx, files, dataDir); err != nil {
					fmt.Printf("Failed to download dataset: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("Dataset %s downloaded to %s\n", name, dataDir)
			}

			if skipUpload {
				return
			}

			bucket := utils.FlagOrConfig(cmd, "bucket")
			if bucket == "" {
				fmt.Println("Error: Must specify the bucket to upload to")
				os.Exit(1)
			}
			prefix := utils.FlagOrConfig(cmd, "prefix")
			if prefix == "" {
				prefix = name
				fmt.Printf("No key prefix specified, using dataset name %q\n", prefix)
			}

			sess, err := utils.NewSession(utils.FlagOrConfig(cmd, "region"))
			if err != nil {
				fmt.Printf("Failed to open AWS session: %v\n", err)
				os.Exit(1)
			}

			up := storage.NewUploader(sess)
			up.Concurrency = utils.IntFlagOrConfig(cmd, "concurrency")

			stats, err := up.UploadDir(ctx, dataDir, bucket, prefix)
			metrics.ObserveUpload(stats.Files, stats.Bytes)
			metrics.PushToGateway(utils.FlagOrConfig(cmd, "push-gateway"), "trainctl")
			if err != nil {
				fmt.Printf("Failed to upload dataset: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Uploaded %d files (%d bytes) to %s\n", stats.Files, stats.Bytes, storage.S3URI(bucket, prefix))
			fmt.Println("Use this location for the job's data channels, e.g.:")
			fmt.Printf("  trainctl submit --channel train=%s/train2017 --channel annotations=%s/annotations ...\n",
				storage.S3URI(bucket, prefix), storage.S3URI(bucket, prefix))
		},
	}

	cmd.Flags().String("name", "", "Dataset name (coco2017)")
	cmd.Flags().String("data-dir", "", "Local directory for the downloaded files")
	cmd.Flags().String("prefix", "", "Object key prefix to upload under")
	cmd.Flags().Int("concurrency", 0, "Parallel uploads (default 8)")
	cmd.Flags().BoolVar(&skipDownload, "skip-download", false, "Upload an existing local directory without downloading")
	cmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Download only, do not upload")

	return cmd
}
