package model

// FrameTypeCache holds the materialized record lists of the most recently
// loaded frame, keyed by type ID. Two instances exist side by side (a
// live-render cache and a chart-snapshot cache) so that painting and
// background charting never contend on the same buffers; the loader fills
// both through a single write path.
//
// A present but empty FrameTypeData distinguishes "checked, no data in the
// file" from "never requested". Like the position index, the cache is
// synchronized by its owner.
type FrameTypeCache struct {
	frameIdx int
	entries  map[int]*FrameTypeData
}

// NewFrameTypeCache creates an empty cache not bound to any frame.
func NewFrameTypeCache() *FrameTypeCache {
	return &FrameTypeCache{
		frameIdx: -1,
		entries:  make(map[int]*FrameTypeData),
	}
}

// FrameIdx returns the frame the cached entries belong to, -1 if none.
func (c *FrameTypeCache) FrameIdx() int {
	return c.frameIdx
}

// Put stores the records of one type for the given frame. Switching to a
// different frame drops all entries of the previous one.
func (c *FrameTypeCache) Put(frameIdx, typeID int, data *FrameTypeData) {
	if frameIdx != c.frameIdx {
		c.entries = make(map[int]*FrameTypeData)
		c.frameIdx = frameIdx
	}
	c.entries[typeID] = data
}

// Get returns the cached records for the type. ok is false when the pair
// was never loaded; an empty non-nil result means "checked, no data".
func (c *FrameTypeCache) Get(frameIdx, typeID int) (data *FrameTypeData, ok bool) {
	if frameIdx != c.frameIdx {
		return nil, false
	}
	data, ok = c.entries[typeID]
	return data, ok
}

// Clear drops all entries and unbinds the frame.
func (c *FrameTypeCache) Clear() {
	c.frameIdx = -1
	c.entries = make(map[int]*FrameTypeData)
}
