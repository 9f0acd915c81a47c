// Copyright (c) OpenMMLab. All rights reserved.

package shard

import (
	"testing"
)

// Each record must be visited by exactly one process per epoch,
// whatever the strategy.
func TestContiguousCoversEveryRecordOnce(t *testing.T) {
	cases := []struct {
		numRecords int
		worldSize  int
	}{
		{numRecords: 118287, worldSize: 32}, // COCO train2017 on 4x8 GPUs
		{numRecords: 10, worldSize: 3},
		{numRecords: 3, worldSize: 8}, // more processes than records
		{numRecords: 0, worldSize: 4},
		{numRecords: 7, worldSize: 1},
	}

	for _, c := range cases {
		visits := make([]int, c.numRecords)
		var sizes []int
		for rank := 0; rank < c.worldSize; rank++ {
			r, err := Contiguous(c.numRecords, c.worldSize, rank)
			if err != nil {
				t.Fatalf("Contiguous(%d, %d, %d) error: %v", c.numRecords, c.worldSize, rank, err)
			}
			for i := r.Start; i < r.End; i++ {
				visits[i]++
			}
			sizes = append(sizes, r.Len())
		}

		for i, n := range visits {
			if n != 1 {
				t.Errorf("records=%d world=%d: record %d visited %d times", c.numRecords, c.worldSize, i, n)
			}
		}

		// Balanced: block sizes differ by at most one.
		minSize, maxSize := sizes[0], sizes[0]
		for _, s := range sizes {
			if s < minSize {
				minSize = s
			}
			if s > maxSize {
				maxSize = s
			}
		}
		if maxSize-minSize > 1 {
			t.Errorf("records=%d world=%d: unbalanced blocks, sizes %v", c.numRecords, c.worldSize, sizes)
		}
	}
}

func TestStridedCoversEveryRecordOnce(t *testing.T) {
	const numRecords, worldSize = 25, 4

	visits := make([]int, numRecords)
	for rank := 0; rank < worldSize; rank++ {
		indices, err := Strided(numRecords, worldSize, rank)
		if err != nil {
			t.Fatal(err)
		}
		for _, i := range indices {
			visits[i]++
		}
	}
	for i, n := range visits {
		if n != 1 {
			t.Errorf("record %d visited %d times", i, n)
		}
	}
}

func TestStridedIsDeterministic(t *testing.T) {
	a, _ := Strided(100, 8, 5)
	b, _ := Strided(100, 8, 5)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d differs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestBadArguments(t *testing.T) {
	if _, err := Contiguous(10, 0, 0); err == nil {
		t.Error("zero world size accepted")
	}
	if _, err := Contiguous(10, 4, 4); err == nil {
		t.Error("rank == world size accepted")
	}
	if _, err := Strided(10, 4, -1); err == nil {
		t.Error("negative rank accepted")
	}
	if _, err := Contiguous(-1, 4, 0); err == nil {
		t.Error("negative record count accepted")
	}
}

func TestLocalDevice(t *testing.T) {
	tests := []struct {
		name       string
		localRank  int
		numDevices int
		want       int
		wantErr    bool
	}{
		{"First GPU", 0, 8, 0, false},
		{"Last GPU", 7, 8, 7, false},
		{"Rank beyond devices", 8, 8, 0, true},
		{"No devices", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalDevice(tt.localRank, tt.numDevices)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LocalDevice(%d, %d) error = %v, wantErr %v", tt.localRank, tt.numDevices, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("LocalDevice(%d, %d) = %d, want %d", tt.localRank, tt.numDevices, got, tt.want)
			}
		})
	}
}
