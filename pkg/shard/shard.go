// Copyright (c) OpenMMLab. All rights reserved.

// Package shard computes the deterministic dataset partition a training
// process must read when it joins a data-parallel job: partitioning by
// total process count and this process's rank guarantees every record
// is visited by exactly one process per epoch.
package shard

import "fmt"

// Range is a half-open interval of record indices.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// Contiguous assigns rank a balanced block of records. Ranks below
// numRecords%worldSize receive one extra record, so block sizes differ
// by at most one.
func Contiguous(numRecords, worldSize, rank int) (Range, error) {
	if err := check(numRecords, worldSize, rank); err != nil {
		return Range{}, err
	}

	base := numRecords / worldSize
	extra := numRecords % worldSize

	start := rank*base + min(rank, extra)
	size := base
	if rank < extra {
		size++
	}
	return Range{Start: start, End: start + size}, nil
}

// Strided assigns rank every worldSize-th record starting at its own
// index. Interleaving keeps per-process class balance when the dataset
// is ordered.
func Strided(numRecords, worldSize, rank int) ([]int, error) {
	if err := check(numRecords, worldSize, rank); err != nil {
		return nil, err
	}

	indices := make([]int, 0, (numRecords+worldSize-1-rank)/worldSize)
	for i := rank; i < numRecords; i += worldSize {
		indices = append(indices, i)
	}
	return indices, nil
}

// LocalDevice binds a process to exactly one accelerator on its host,
// by the rank value unique within that host.
func LocalDevice(localRank, numDevices int) (int, error) {
	if numDevices < 1 {
		return 0, fmt.Errorf("host reports %d accelerator devices", numDevices)
	}
	if localRank < 0 || localRank >= numDevices {
		return 0, fmt.Errorf("local rank %d out of range for %d devices", localRank, numDevices)
	}
	return localRank, nil
}

func check(numRecords, worldSize, rank int) error {
	if numRecords < 0 {
		return fmt.Errorf("negative record count %d", numRecords)
	}
	if worldSize < 1 {
		return fmt.Errorf("world size must be positive, got %d", worldSize)
	}
	if rank < 0 || rank >= worldSize {
		return fmt.Errorf("rank %d out of range for world size %d", rank, worldSize)
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
