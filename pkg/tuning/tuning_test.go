// Copyright (c) OpenMMLab. All rights reserved.

package tuning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultProfileEnv(t *testing.T) {
	p, err := Lookup("default")
	assert.NoError(t, err)

	env := p.Env()
	assert.Equal(t, "67108864", env["HOROVOD_FUSION_THRESHOLD"]) // 64 MB in bytes
	assert.Equal(t, "5", env["HOROVOD_CYCLE_TIME"])
	assert.Equal(t, "8", env["NCCL_MIN_NRINGS"])
	assert.Equal(t, "2", env["OMP_NUM_THREADS"])
	assert.Equal(t, "Round", env["MXNET_GPU_MEM_POOL_TYPE"])

	_, hasAutotune := env["HOROVOD_AUTOTUNE"]
	assert.False(t, hasAutotune)
}

func TestAutotuneProfileDropsStaticFusionValues(t *testing.T) {
	p, err := Lookup("autotune")
	assert.NoError(t, err)

	env := p.Env()
	assert.Equal(t, "1", env["HOROVOD_AUTOTUNE"])
	assert.Equal(t, "5", env["HOROVOD_AUTOTUNE_WARMUP_SAMPLES"])

	// Static fusion settings would fight the autotuner.
	_, hasThreshold := env["HOROVOD_FUSION_THRESHOLD"]
	_, hasCycle := env["HOROVOD_CYCLE_TIME"]
	assert.False(t, hasThreshold)
	assert.False(t, hasCycle)
}

func TestLargeClusterProfile(t *testing.T) {
	p, err := Lookup("large-cluster")
	assert.NoError(t, err)

	env := p.Env()
	assert.Equal(t, "1", env["HOROVOD_HIERARCHICAL_ALLREDUCE"])
	assert.Equal(t, "13", env["NCCL_MIN_NRINGS"])
	assert.Equal(t, "INFO", env["NCCL_DEBUG"])
}

func TestMPIOptionsDeterministic(t *testing.T) {
	p, _ := Lookup("default")

	opts := p.MPIOptions()
	assert.Equal(t, opts, p.MPIOptions())

	for k, v := range p.Env() {
		assert.Contains(t, opts, "-x "+k+"="+v)
	}
	// Pure passthrough flags, nothing else.
	for _, field := range strings.Fields(opts) {
		if field == "-x" {
			continue
		}
		assert.Contains(t, field, "=")
	}
}

func TestLookupUnknownProfile(t *testing.T) {
	_, err := Lookup("turbo")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "default")
}
