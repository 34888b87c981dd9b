package model

import "sort"

// PositionIndex maps (POC, typeID) to the byte offset of the first data
// line of that pair. POCs may have gaps; only the first occurrence of a
// pair is ever recorded.
//
// The index itself is not synchronized. The owner serializes indexer
// writes and loader reads under a single lock, see internal/service.
type PositionIndex struct {
	positions map[int]map[int]int64
}

// NewPositionIndex creates an empty index.
func NewPositionIndex() *PositionIndex {
	return &PositionIndex{positions: make(map[int]map[int]int64)}
}

// Record stores the offset for (poc, typeID) if the pair is not present
// yet. It reports whether the entry was stored.
func (x *PositionIndex) Record(poc, typeID int, offset int64) bool {
	byType, ok := x.positions[poc]
	if !ok {
		byType = make(map[int]int64)
		x.positions[poc] = byType
	}
	if _, exists := byType[typeID]; exists {
		return false
	}
	byType[typeID] = offset
	return true
}

// Contains reports whether an offset is recorded for (poc, typeID).
func (x *PositionIndex) Contains(poc, typeID int) bool {
	byType, ok := x.positions[poc]
	if !ok {
		return false
	}
	_, ok = byType[typeID]
	return ok
}

// ContainsPOC reports whether any type was recorded for the POC.
func (x *PositionIndex) ContainsPOC(poc int) bool {
	_, ok := x.positions[poc]
	return ok
}

// Offset returns the recorded offset for (poc, typeID).
func (x *PositionIndex) Offset(poc, typeID int) (int64, bool) {
	byType, ok := x.positions[poc]
	if !ok {
		return 0, false
	}
	off, ok := byType[typeID]
	return off, ok
}

// MinOffset returns the smallest offset recorded for any type of the POC.
// Interleaved loads start here so that no record of the POC block is missed.
func (x *PositionIndex) MinOffset(poc int) (int64, bool) {
	byType, ok := x.positions[poc]
	if !ok || len(byType) == 0 {
		return 0, false
	}
	first := true
	var min int64
	for _, off := range byType {
		if first || off < min {
			min = off
			first = false
		}
	}
	return min, true
}

// POCs returns all indexed POCs in ascending order.
func (x *PositionIndex) POCs() []int {
	out := make([]int, 0, len(x.positions))
	for poc := range x.positions {
		out = append(out, poc)
	}
	sort.Ints(out)
	return out
}

// TypesForPOC returns the type IDs recorded for the POC in ascending order.
func (x *PositionIndex) TypesForPOC(poc int) []int {
	byType, ok := x.positions[poc]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(byType))
	for id := range byType {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of recorded (POC, type) pairs.
func (x *PositionIndex) Len() int {
	n := 0
	for _, byType := range x.positions {
		n += len(byType)
	}
	return n
}

// Clear drops all entries.
func (x *PositionIndex) Clear() {
	x.positions = make(map[int]map[int]int64)
}
