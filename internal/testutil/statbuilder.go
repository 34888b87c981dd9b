package testutil

import (
	"fmt"
	"strings"
)

// StatFileBuilder assembles synthetic statistics files for tests: a header
// of '%'-prefixed type declarations followed by data records.
type StatFileBuilder struct {
	lines []string
}

// NewStatFile creates an empty builder.
func NewStatFile() *StatFileBuilder {
	return &StatFileBuilder{}
}

// SeqSpecs adds a sequence metadata directive.
func (b *StatFileBuilder) SeqSpecs(name, layer string, w, h int, rate float64) *StatFileBuilder {
	b.lines = append(b.lines, fmt.Sprintf("%%;seq-specs;%s;%s;%d;%d;%g", name, layer, w, h, rate))
	return b
}

// ValueType declares a scalar statistics type rendered as a value map.
func (b *StatFileBuilder) ValueType(id int, name string) *StatFileBuilder {
	b.lines = append(b.lines, fmt.Sprintf("%%;type;%d;%s;map", id, name))
	return b
}

// RangeType declares a scalar statistics type with a value range mapping.
func (b *StatFileBuilder) RangeType(id int, name string, min, max int) *StatFileBuilder {
	b.lines = append(b.lines,
		fmt.Sprintf("%%;type;%d;%s;range", id, name),
		fmt.Sprintf("%%;range;%d;%d;0;255;0;255;0;255;255;255", min, max))
	return b
}

// VectorType declares a vector statistics type.
func (b *StatFileBuilder) VectorType(id int, name string) *StatFileBuilder {
	b.lines = append(b.lines, fmt.Sprintf("%%;type;%d;%s;vector", id, name))
	return b
}

// LineType declares a line statistics type.
func (b *StatFileBuilder) LineType(id int, name string) *StatFileBuilder {
	b.lines = append(b.lines, fmt.Sprintf("%%;type;%d;%s;line", id, name))
	return b
}

// Directive adds a raw header line.
func (b *StatFileBuilder) Directive(line string) *StatFileBuilder {
	b.lines = append(b.lines, line)
	return b
}

// Value adds a scalar data record.
func (b *StatFileBuilder) Value(poc, x, y, w, h, typeID, value int) *StatFileBuilder {
	b.lines = append(b.lines, fmt.Sprintf("%d;%d;%d;%d;%d;%d;%d", poc, x, y, w, h, typeID, value))
	return b
}

// Vector adds a vector data record.
func (b *StatFileBuilder) Vector(poc, x, y, w, h, typeID, dx, dy int) *StatFileBuilder {
	b.lines = append(b.lines, fmt.Sprintf("%d;%d;%d;%d;%d;%d;%d;%d", poc, x, y, w, h, typeID, dx, dy))
	return b
}

// Line adds a line data record.
func (b *StatFileBuilder) Line(poc, x, y, w, h, typeID, x1, y1, x2, y2 int) *StatFileBuilder {
	b.lines = append(b.lines, fmt.Sprintf("%d;%d;%d;%d;%d;%d;%d;%d;%d;%d",
		poc, x, y, w, h, typeID, x1, y1, x2, y2))
	return b
}

// Raw adds a verbatim body line.
func (b *StatFileBuilder) Raw(line string) *StatFileBuilder {
	b.lines = append(b.lines, line)
	return b
}

// String renders the file with a trailing newline.
func (b *StatFileBuilder) String() string {
	return strings.Join(b.lines, "\n") + "\n"
}

// StringNoFinalNewline renders the file without a trailing newline.
func (b *StatFileBuilder) StringNoFinalNewline() string {
	return strings.Join(b.lines, "\n")
}
