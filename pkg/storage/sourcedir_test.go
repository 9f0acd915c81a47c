// Copyright (c) OpenMMLab. All rights reserved.

package storage

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func readBundle(t *testing.T, data []byte) map[string]string {
	t.Helper()
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gr)

	files := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			t.Fatal(err)
		}
		files[hdr.Name] = string(content)
	}
	return files
}

func TestPackageSource(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"train.py":        "import horovod.torch as hvd",
		"utils/coco.py":   "def load():\n    pass",
		"requirements.txt": "mpi4py",
	})

	var buf bytes.Buffer
	err := PackageSource(dir, &buf)
	assert.NoError(t, err)

	files := readBundle(t, buf.Bytes())
	var names []string
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{"requirements.txt", "train.py", "utils/coco.py"}, names)
	assert.Equal(t, "import horovod.torch as hvd", files["train.py"])
}

func TestUploadSourceBundle(t *testing.T) {
	dir := writeTree(t, map[string]string{"train.py": "print('hi')"})

	fake := newFakeS3()
	up := &Uploader{S3: fake}

	uri, err := up.UploadSourceBundle(context.Background(), dir, "my-bucket", "jobs/mask-rcnn/source")
	assert.NoError(t, err)
	assert.Equal(t, "s3://my-bucket/jobs/mask-rcnn/source/sourcedir.tar.gz", uri)

	data, ok := fake.objects["my-bucket/jobs/mask-rcnn/source/sourcedir.tar.gz"]
	assert.True(t, ok)

	files := readBundle(t, data)
	assert.Equal(t, "print('hi')", files["train.py"])
}
