package model

// LayoutMode describes how the data records of one POC are arranged in the
// file body. It is decided once by the position indexer on the first
// unambiguous observation and never revised for the rest of the scan.
type LayoutMode int

const (
	// LayoutUnknown means no deciding observation has been made yet.
	LayoutUnknown LayoutMode = iota
	// LayoutSequential means all records for one (POC, type) pair are
	// contiguous, one type block after the other.
	LayoutSequential
	// LayoutInterleaved means records of different types alternate within
	// one contiguous POC block.
	LayoutInterleaved
)

// String returns a human-readable layout name.
func (m LayoutMode) String() string {
	switch m {
	case LayoutSequential:
		return "sequential"
	case LayoutInterleaved:
		return "interleaved"
	default:
		return "unknown"
	}
}

// Block is the position and size of one annotated block in frame pixels.
type Block struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// BlockValue is a scalar annotation attached to a block.
type BlockValue struct {
	Block
	Value int `json:"value"`
}

// BlockVector is a 2-component vector annotation attached to a block. The
// components are raw file values, not yet divided by the type's VectorScale.
type BlockVector struct {
	Block
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// BlockLine is a line annotation given by two end points.
type BlockLine struct {
	Block
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// FrameTypeData holds the decoded records of one (frame, type) pair. An
// allocated but empty value explicitly means "checked, no data".
type FrameTypeData struct {
	Values  []BlockValue  `json:"values,omitempty"`
	Vectors []BlockVector `json:"vectors,omitempty"`
	Lines   []BlockLine   `json:"lines,omitempty"`
}

// AddBlockValue appends a scalar block record.
func (d *FrameTypeData) AddBlockValue(x, y, w, h, value int) {
	d.Values = append(d.Values, BlockValue{Block: Block{X: x, Y: y, Width: w, Height: h}, Value: value})
}

// AddBlockVector appends a vector block record.
func (d *FrameTypeData) AddBlockVector(x, y, w, h, dx, dy int) {
	d.Vectors = append(d.Vectors, BlockVector{Block: Block{X: x, Y: y, Width: w, Height: h}, DX: dx, DY: dy})
}

// AddLine appends a line record.
func (d *FrameTypeData) AddLine(x, y, w, h, x1, y1, x2, y2 int) {
	d.Lines = append(d.Lines, BlockLine{Block: Block{X: x, Y: y, Width: w, Height: h}, X1: x1, Y1: y1, X2: x2, Y2: y2})
}

// Len returns the total number of decoded records.
func (d *FrameTypeData) Len() int {
	return len(d.Values) + len(d.Vectors) + len(d.Lines)
}
