// Copyright (c) OpenMMLab. All rights reserved.

// Package tuning renders the environment knobs the collective
// communication library and framework runtime read at startup. The
// knobs only shape an external library's behavior; nothing here is
// interpreted locally.
package tuning

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Profile is one named set of communication-tuning values.
type Profile struct {
	Name string `json:"name"`

	// Tensor fusion: batch small allreduce operations into fewer,
	// larger ones.
	FusionThresholdMB int     `json:"fusion_threshold_mb"`
	CycleTimeMS       float64 `json:"cycle_time_ms"`

	// Autotune searches the library's tuning space during the first
	// training cycles instead of using the static values above.
	Autotune              bool `json:"autotune"`
	AutotuneWarmupSamples int  `json:"autotune_warmup_samples,omitempty"`

	HierarchicalAllreduce bool `json:"hierarchical_allreduce"`

	NCCLMinRings int    `json:"nccl_min_rings,omitempty"`
	NCCLDebug    string `json:"nccl_debug,omitempty"`

	// Framework runtime knobs.
	OMPThreads         int    `json:"omp_threads,omitempty"`
	GPUMemoryPoolType  string `json:"gpu_memory_pool_type,omitempty"` // e.g. Round
}

// Presets matching the notebook guidance: a conservative default, an
// autotuned profile for long jobs, and a profile for large clusters
// where hierarchical allreduce pays off.
var presets = []Profile{
	{
		Name:              "default",
		FusionThresholdMB: 64,
		CycleTimeMS:       5,
		NCCLMinRings:      8,
		OMPThreads:        2,
		GPUMemoryPoolType: "Round",
	},
	{
		Name:                  "autotune",
		Autotune:              true,
		AutotuneWarmupSamples: 5,
		NCCLMinRings:          8,
		OMPThreads:            2,
		GPUMemoryPoolType:     "Round",
	},
	{
		Name:                  "large-cluster",
		FusionThresholdMB:     256,
		CycleTimeMS:           1,
		HierarchicalAllreduce: true,
		NCCLMinRings:          13,
		NCCLDebug:             "INFO",
		OMPThreads:            2,
		GPUMemoryPoolType:     "Round",
	},
}

// Lookup returns the named preset.
func Lookup(name string) (Profile, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown tuning profile %q (have %s)", name, strings.Join(Names(), ", "))
}

// Names lists the available presets.
func Names() []string {
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	return names
}

// Env renders the profile as the environment variables set before
// training starts.
func (p Profile) Env() map[string]string {
	env := map[string]string{}

	if p.Autotune {
		env["HOROVOD_AUTOTUNE"] = "1"
		if p.AutotuneWarmupSamples > 0 {
			env["HOROVOD_AUTOTUNE_WARMUP_SAMPLES"] = strconv.Itoa(p.AutotuneWarmupSamples)
		}
	} else {
		if p.FusionThresholdMB > 0 {
			env["HOROVOD_FUSION_THRESHOLD"] = strconv.Itoa(p.FusionThresholdMB * 1024 * 1024)
		}
		if p.CycleTimeMS > 0 {
			env["HOROVOD_CYCLE_TIME"] = strconv.FormatFloat(p.CycleTimeMS, 'g', -1, 64)
		}
	}
	if p.HierarchicalAllreduce {
		env["HOROVOD_HIERARCHICAL_ALLREDUCE"] = "1"
	}
	if p.NCCLMinRings > 0 {
		env["NCCL_MIN_NRINGS"] = strconv.Itoa(p.NCCLMinRings)
	}
	if p.NCCLDebug != "" {
		env["NCCL_DEBUG"] = p.NCCLDebug
	}
	if p.OMPThreads > 0 {
		env["OMP_NUM_THREADS"] = strconv.Itoa(p.OMPThreads)
	}
	if p.GPUMemoryPoolType != "" {
		env["MXNET_GPU_MEM_POOL_TYPE"] = p.GPUMemoryPoolType
	}
	return env
}

// MPIOptions renders the profile as launcher flags, passing each
// variable through to the remote processes. The result feeds the job
// configuration's custom MPI options.
func (p Profile) MPIOptions() string {
	env := p.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]string, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, "-x "+k+"="+env[k])
	}
	return strings.Join(opts, " ")
}
