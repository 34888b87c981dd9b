// Package model defines the data model for statistics files: declared
// statistic types, decoded per-block records, the position index and the
// per-frame caches shared between the indexer and the loader.
package model

// ColorMappingKind describes how raw values of a statistic type are mapped
// to colors for rendering.
type ColorMappingKind int

const (
	// MappingNone means no color mapping was declared.
	MappingNone ColorMappingKind = iota
	// MappingMap maps discrete values to explicit colors.
	MappingMap
	// MappingRange interpolates between a min and a max color.
	MappingRange
	// MappingGradient uses a named gradient function over a value range.
	MappingGradient
)

// RGBA is a plain 8-bit color value. The model carries colors only as
// metadata; painting them is owned by the presentation layer.
type RGBA struct {
	R, G, B, A uint8
}

// ColorMapper holds the color mapping declared for one statistic type.
type ColorMapper struct {
	Kind ColorMappingKind

	// ColorMap maps discrete values to colors (Kind == MappingMap).
	ColorMap map[int]RGBA

	// RangeMin/RangeMax bound the value range (MappingRange and
	// MappingGradient).
	RangeMin int
	RangeMax int

	// MinColor/MaxColor are the interpolation endpoints (MappingRange).
	MinColor RGBA
	MaxColor RGBA

	// GradientName names the gradient function (MappingGradient).
	GradientName string
}

// ArrowHead describes how vector annotations are tipped when drawn.
type ArrowHead int

const (
	// ArrowHeadArrow draws a regular arrow head (default for vectors).
	ArrowHeadArrow ArrowHead = iota
	// ArrowHeadCircle draws a circle at the vector end point.
	ArrowHeadCircle
	// ArrowHeadNone draws no head (used for line annotations).
	ArrowHeadNone
)

// TypeDescriptor describes one statistic type declared in the file header.
// A descriptor is mutable while the header reader assembles it and becomes
// immutable once Finalize is called.
type TypeDescriptor struct {
	TypeID int
	Name   string

	// Capability flags. A data record is only accepted into the cache if
	// the record shape matches the declared capability.
	HasValueData  bool
	HasVectorData bool

	// Render flags mirror the capabilities at declaration time; the
	// presentation layer may toggle them later.
	RenderValueData  bool
	RenderVectorData bool

	ColorMapper ColorMapper
	VectorColor RGBA
	GridColor   RGBA

	// VectorScale divides raw vector components for display (e.g. 4 for
	// quarter-pel motion vectors).
	VectorScale int

	// ScaleToBlockSize scales value rendering with the block dimensions.
	ScaleToBlockSize bool

	ArrowHead ArrowHead

	finalized bool
}

// NewTypeDescriptor returns a descriptor with default render metadata.
func NewTypeDescriptor() *TypeDescriptor {
	return &TypeDescriptor{
		TypeID:      -1,
		VectorScale: 1,
		VectorColor: RGBA{R: 0, G: 0, B: 0, A: 255},
		GridColor:   RGBA{R: 0, G: 0, B: 0, A: 255},
	}
}

// Finalize marks the descriptor's initial state as complete. Further header
// directives must not modify it.
func (t *TypeDescriptor) Finalize() {
	t.finalized = true
}

// Finalized reports whether the descriptor's initial state is fixed.
func (t *TypeDescriptor) Finalized() bool {
	return t.finalized
}
