package statfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vstats-analysis/internal/parser"
	"github.com/vstats-analysis/pkg/model"
)

// recordClass is the shape of one data record, inferred from its field
// count. Classification lives in one place so the thresholds are not
// scattered across call sites.
type recordClass int

const (
	classValue  recordClass = iota // 4 positional fields + 1 value
	classVector                    // + 1 more: a 2-component vector
	classLine                      // + 2 more: a line given by two points
)

// classifyRecord determines the record shape and extracts the value fields.
// Records are poc;x;y;w;h;type;v1[;v2[;v3;v4]]; a vector needs exactly one
// extra field, a line exactly three.
func classifyRecord(fields []string) (recordClass, [4]int, error) {
	var vals [4]int
	switch {
	case len(fields) == 7:
		vals[0] = atoi(fields[6])
		return classValue, vals, nil
	case len(fields) == 8:
		vals[0] = atoi(fields[6])
		vals[1] = atoi(fields[7])
		return classVector, vals, nil
	case len(fields) >= 10:
		vals[0] = atoi(fields[6])
		vals[1] = atoi(fields[7])
		vals[2] = atoi(fields[8])
		vals[3] = atoi(fields[9])
		return classLine, vals, nil
	default:
		return 0, vals, fmt.Errorf("%w: unsupported value field count in %d-field record",
			parser.ErrMalformedRecord, len(fields))
	}
}

// LoadResult is the outcome of loading one (frame, type) pair.
type LoadResult struct {
	Data *model.FrameTypeData

	// OutsideFrame is set when a block's bounding box exceeded the
	// declared frame dimensions. The load still completes.
	OutsideFrame bool
}

// LoadFrameType decodes the records of one (frame, type) pair. The reader
// must be positioned at the scan start offset determined from the position
// index: the pair's own offset for a sequential file, the minimum offset
// over all types of the POC for an interleaved one.
//
// The scan stops at the first record of a different POC, or, in a
// sequential file, of a different type. In an interleaved file records of
// other types inside the POC block are skipped without decoding. Records
// whose shape does not match the declared capability of their type are
// dropped silently.
func LoadFrameType(r io.Reader, frame, typeID int, layout model.LayoutMode, reg *model.TypeRegistry, delim byte) (*LoadResult, error) {
	if delim == 0 {
		delim = DefaultDelimiter
	}
	res := &LoadResult{Data: &model.FrameTypeData{}}

	fw, fh := reg.DeclaredFrameSize()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), DefaultChunkSize)
	for sc.Scan() {
		fields := SplitRecord(sc.Text(), delim)
		if fields[0] == "" || isHeaderRecord(fields) {
			continue
		}
		if len(fields) < 6 {
			return nil, fmt.Errorf("%w: need at least 6 fields, got %d", parser.ErrMalformedRecord, len(fields))
		}

		poc := atoi(fields[0])
		typ := atoi(fields[5])

		// A new POC ends this frame's contiguous block.
		if poc != frame {
			break
		}
		if typ != typeID {
			if layout != model.LayoutInterleaved {
				// A new type ends this type's block in a sequential file.
				break
			}
			// Interleaved: other types inside the POC block are skipped.
			continue
		}

		class, vals, err := classifyRecord(fields)
		if err != nil {
			return nil, err
		}

		x := atoi(fields[1])
		y := atoi(fields[2])
		w := atoi(fields[3])
		h := atoi(fields[4])

		if fw > 0 && fh > 0 && (x+w > fw || y+h > fh) {
			res.OutsideFrame = true
		}

		desc := reg.GetType(typ)
		if desc == nil {
			continue
		}

		// Lenient decoding: capability mismatches are dropped, never an
		// error, so a stray record cannot corrupt the cache.
		switch class {
		case classValue:
			if desc.HasValueData {
				res.Data.AddBlockValue(x, y, w, h, vals[0])
			}
		case classVector:
			if desc.HasVectorData {
				res.Data.AddBlockVector(x, y, w, h, vals[0], vals[1])
			}
		case classLine:
			if desc.HasVectorData {
				res.Data.AddLine(x, y, w, h, vals[0], vals[1], vals[2], vals[3])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return res, nil
}
