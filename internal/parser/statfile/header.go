package statfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/vstats-analysis/internal/parser"
	"github.com/vstats-analysis/pkg/model"
)

// HeaderResult is the outcome of reading the leading header block.
type HeaderResult struct {
	// Registry holds all finalized type declarations.
	Registry *model.TypeRegistry

	// BodyOffset is the byte offset of the first non-header record. The
	// body scanner starts from this exact position. If the file consists
	// only of header records, BodyOffset equals the file size.
	BodyOffset int64
}

// ReadHeader consumes header records ('%'-prefixed) from the start of the
// stream until the first non-header record and builds the type registry.
// The first body record is not part of the header; its offset is reported
// in the result instead.
//
// Unrecognized directives are skipped for forward compatibility. Known
// directives with missing fields fail with parser.ErrMalformedHeader.
func ReadHeader(r io.Reader, delim byte) (*HeaderResult, error) {
	br := bufio.NewReader(r)
	reg := model.NewTypeRegistry()

	open := model.NewTypeDescriptor()
	openActive := false

	finalize := func() {
		open.Finalize()
		reg.AddType(open)
		open = model.NewTypeDescriptor()
		openActive = false
	}

	var offset int64
	for {
		line, err := br.ReadString('\n')
		lineStart := offset
		offset += int64(len(line))

		atEOF := errors.Is(err, io.EOF)
		if err != nil && !atEOF {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if line == "" && atEOF {
			break
		}

		fields := SplitRecord(line, delim)
		if fields[0] == "" {
			if atEOF {
				break
			}
			continue
		}

		// A new type directive or the first body record completes the
		// type currently being assembled.
		if openActive && (!isHeaderRecord(fields) || directive(fields) == "type") {
			finalize()
		}

		if !isHeaderRecord(fields) {
			return &HeaderResult{Registry: reg, BodyOffset: lineStart}, nil
		}

		if err := applyDirective(reg, open, &openActive, fields); err != nil {
			return nil, err
		}
		if atEOF {
			break
		}
	}

	if openActive {
		finalize()
	}
	return &HeaderResult{Registry: reg, BodyOffset: offset}, nil
}

// directive returns the directive keyword of a header record, "" if absent.
func directive(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// applyDirective decodes one header record into the open descriptor or the
// registry's sequence metadata.
func applyDirective(reg *model.TypeRegistry, open *model.TypeDescriptor, openActive *bool, fields []string) error {
	switch directive(fields) {
	case "type":
		if err := needFields(fields, 4, "type"); err != nil {
			return err
		}
		open.TypeID = atoi(fields[2])
		open.Name = fields[3]
		if len(fields) >= 5 {
			switch fields[4] {
			case "map", "range":
				open.HasValueData = true
				open.RenderValueData = true
			case "vector", "line":
				open.HasVectorData = true
				open.RenderVectorData = true
				if fields[4] == "line" {
					open.ArrowHead = model.ArrowHeadNone
				}
			}
		}
		*openActive = true

	case "mapColor":
		if err := needFields(fields, 7, "mapColor"); err != nil {
			return err
		}
		id := atoi(fields[2])
		open.ColorMapper.Kind = model.MappingMap
		if open.ColorMapper.ColorMap == nil {
			open.ColorMapper.ColorMap = make(map[int]model.RGBA)
		}
		open.ColorMapper.ColorMap[id] = model.RGBA{
			R: uint8(atoi(fields[3])),
			G: uint8(atoi(fields[4])),
			B: uint8(atoi(fields[5])),
			A: uint8(atoi(fields[6])),
		}

	case "range":
		// Min/max colors are interleaved component-wise:
		// min;max;rMin;rMax;gMin;gMax;bMin;bMax;aMin;aMax
		if err := needFields(fields, 12, "range"); err != nil {
			return err
		}
		open.ColorMapper.Kind = model.MappingRange
		open.ColorMapper.RangeMin = atoi(fields[2])
		open.ColorMapper.RangeMax = atoi(fields[3])
		open.ColorMapper.MinColor = model.RGBA{
			R: uint8(atoi(fields[4])),
			G: uint8(atoi(fields[6])),
			B: uint8(atoi(fields[8])),
			A: uint8(atoi(fields[10])),
		}
		open.ColorMapper.MaxColor = model.RGBA{
			R: uint8(atoi(fields[5])),
			G: uint8(atoi(fields[7])),
			B: uint8(atoi(fields[9])),
			A: uint8(atoi(fields[11])),
		}

	case "defaultRange":
		if err := needFields(fields, 5, "defaultRange"); err != nil {
			return err
		}
		open.ColorMapper.Kind = model.MappingGradient
		open.ColorMapper.RangeMin = atoi(fields[2])
		open.ColorMapper.RangeMax = atoi(fields[3])
		open.ColorMapper.GradientName = fields[4]

	case "vectorColor":
		if err := needFields(fields, 6, "vectorColor"); err != nil {
			return err
		}
		open.VectorColor = model.RGBA{
			R: uint8(atoi(fields[2])),
			G: uint8(atoi(fields[3])),
			B: uint8(atoi(fields[4])),
			A: uint8(atoi(fields[5])),
		}

	case "gridColor":
		if err := needFields(fields, 5, "gridColor"); err != nil {
			return err
		}
		open.GridColor = model.RGBA{
			R: uint8(atoi(fields[2])),
			G: uint8(atoi(fields[3])),
			B: uint8(atoi(fields[4])),
			A: 255,
		}

	case "scaleFactor":
		if err := needFields(fields, 3, "scaleFactor"); err != nil {
			return err
		}
		open.VectorScale = atoi(fields[2])

	case "scaleToBlockSize":
		if err := needFields(fields, 3, "scaleToBlockSize"); err != nil {
			return err
		}
		open.ScaleToBlockSize = fields[2] == "1"

	case "seq-specs":
		if err := needFields(fields, 7, "seq-specs"); err != nil {
			return err
		}
		reg.SequenceName = fields[2]
		reg.LayerID = fields[3]
		if w, h := atoi(fields[4]), atoi(fields[5]); w > 0 && h > 0 {
			reg.FrameWidth = w
			reg.FrameHeight = h
		}
		if rate, _ := strconv.ParseFloat(fields[6], 64); rate > 0 {
			reg.FrameRate = rate
		}

	default:
		// Unknown directives are ignored for forward compatibility.
	}
	return nil
}

// needFields checks the field count of a known directive.
func needFields(fields []string, n int, kind string) error {
	if len(fields) < n {
		return fmt.Errorf("%w: %q needs %d fields, got %d", parser.ErrMalformedHeader, kind, n, len(fields))
	}
	return nil
}

// atoi converts a numeric field, yielding 0 for non-numeric input. Field
// presence is validated separately; the value itself is decoded leniently.
func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
