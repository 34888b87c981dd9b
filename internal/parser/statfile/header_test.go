package statfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vstats-analysis/internal/parser"
	"github.com/vstats-analysis/pkg/model"
)

func TestReadHeader_FullHeader(t *testing.T) {
	content := strings.Join([]string{
		"%;syntax-version;v1.2",
		"%;seq-specs;BQMall_832x480;0;832;480;60",
		"%;type;9;MVDL0;vector",
		"%;vectorColor;100;0;0;255",
		"%;scaleFactor;4",
		"%;type;0;PredMode;map",
		"%;mapColor;0;0;0;255;255",
		"%;mapColor;1;255;0;0;255",
		"%;type;11;QP;range",
		"%;range;0;51;0;255;0;255;0;255;255;255",
		"%;type;12;RefIdx;range",
		"%;defaultRange;0;4;jet",
		"%;type;13;GeoPartition;line",
		"%;gridColor;128;128;128",
		"0;0;0;16;16;9;3;4",
	}, "\n") + "\n"

	hdr, err := ReadHeader(strings.NewReader(content), DefaultDelimiter)
	require.NoError(t, err)

	reg := hdr.Registry
	assert.Equal(t, "BQMall_832x480", reg.SequenceName)
	assert.Equal(t, "0", reg.LayerID)
	assert.Equal(t, 832, reg.FrameWidth)
	assert.Equal(t, 480, reg.FrameHeight)
	assert.Equal(t, 60.0, reg.FrameRate)
	assert.Equal(t, 5, reg.Len())

	// The body offset points exactly at the first data record.
	assert.Equal(t, int64(strings.Index(content, "0;0;0;16;16;9;3;4")), hdr.BodyOffset)

	mv := reg.GetType(9)
	require.NotNil(t, mv)
	assert.Equal(t, "MVDL0", mv.Name)
	assert.True(t, mv.HasVectorData)
	assert.False(t, mv.HasValueData)
	assert.True(t, mv.RenderVectorData)
	assert.Equal(t, model.RGBA{R: 100, G: 0, B: 0, A: 255}, mv.VectorColor)
	assert.Equal(t, 4, mv.VectorScale)
	assert.Equal(t, model.ArrowHeadArrow, mv.ArrowHead)
	assert.True(t, mv.Finalized())

	pred := reg.GetType(0)
	require.NotNil(t, pred)
	assert.True(t, pred.HasValueData)
	assert.Equal(t, model.MappingMap, pred.ColorMapper.Kind)
	assert.Equal(t, model.RGBA{R: 0, G: 0, B: 255, A: 255}, pred.ColorMapper.ColorMap[0])
	assert.Equal(t, model.RGBA{R: 255, G: 0, B: 0, A: 255}, pred.ColorMapper.ColorMap[1])

	qp := reg.GetType(11)
	require.NotNil(t, qp)
	assert.Equal(t, model.MappingRange, qp.ColorMapper.Kind)
	assert.Equal(t, 0, qp.ColorMapper.RangeMin)
	assert.Equal(t, 51, qp.ColorMapper.RangeMax)
	// Min/max color components are interleaved in the directive.
	assert.Equal(t, model.RGBA{R: 0, G: 0, B: 0, A: 255}, qp.ColorMapper.MinColor)
	assert.Equal(t, model.RGBA{R: 255, G: 255, B: 255, A: 255}, qp.ColorMapper.MaxColor)

	ref := reg.GetType(12)
	require.NotNil(t, ref)
	assert.Equal(t, model.MappingGradient, ref.ColorMapper.Kind)
	assert.Equal(t, "jet", ref.ColorMapper.GradientName)
	assert.Equal(t, 4, ref.ColorMapper.RangeMax)

	geo := reg.GetType(13)
	require.NotNil(t, geo)
	assert.True(t, geo.HasVectorData)
	assert.Equal(t, model.ArrowHeadNone, geo.ArrowHead)
	assert.Equal(t, model.RGBA{R: 128, G: 128, B: 128, A: 255}, geo.GridColor)
}

func TestReadHeader_HeaderOnlyFile(t *testing.T) {
	content := "%;seq-specs;seq;0;64;64;30\n%;type;5;Skip;map\n"

	hdr, err := ReadHeader(strings.NewReader(content), DefaultDelimiter)
	require.NoError(t, err)

	// The open descriptor is finalized at EOF and the body offset equals
	// the file size.
	assert.Equal(t, int64(len(content)), hdr.BodyOffset)
	require.NotNil(t, hdr.Registry.GetType(5))
	assert.True(t, hdr.Registry.GetType(5).Finalized())
}

func TestReadHeader_NoFinalNewline(t *testing.T) {
	content := "%;type;5;Skip;map"

	hdr, err := ReadHeader(strings.NewReader(content), DefaultDelimiter)
	require.NoError(t, err)
	require.NotNil(t, hdr.Registry.GetType(5))
	assert.Equal(t, int64(len(content)), hdr.BodyOffset)
}

func TestReadHeader_EmptyLinesSkipped(t *testing.T) {
	content := "\n%;type;5;Skip;map\n\n0;0;0;8;8;5;1\n"

	hdr, err := ReadHeader(strings.NewReader(content), DefaultDelimiter)
	require.NoError(t, err)
	assert.Equal(t, 1, hdr.Registry.Len())
	assert.Equal(t, int64(strings.Index(content, "0;0;0")), hdr.BodyOffset)
}

func TestReadHeader_UnknownDirectiveIgnored(t *testing.T) {
	content := "%;type;5;Skip;map\n%;futureDirective;a;b;c\n0;0;0;8;8;5;1\n"

	hdr, err := ReadHeader(strings.NewReader(content), DefaultDelimiter)
	require.NoError(t, err)
	assert.Equal(t, 1, hdr.Registry.Len())
}

func TestReadHeader_MalformedDirective(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "type too short", content: "%;type;5\n"},
		{name: "range too short", content: "%;type;5;QP;range\n%;range;0;51;0\n"},
		{name: "seq-specs too short", content: "%;seq-specs;name;0\n"},
		{name: "mapColor too short", content: "%;type;5;P;map\n%;mapColor;0;1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(strings.NewReader(tt.content), DefaultDelimiter)
			require.Error(t, err)
			assert.ErrorIs(t, err, parser.ErrMalformedHeader)
		})
	}
}

func TestReadHeader_RedeclaredTypeWins(t *testing.T) {
	content := "%;type;5;Old;map\n%;type;6;Other;map\n%;type;5;New;vector\n0;0;0;8;8;5;1;2\n"

	hdr, err := ReadHeader(strings.NewReader(content), DefaultDelimiter)
	require.NoError(t, err)

	reg := hdr.Registry
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, "New", reg.GetType(5).Name)
	assert.True(t, reg.GetType(5).HasVectorData)

	// The redeclaration keeps the original declaration position.
	types := reg.Types()
	require.Len(t, types, 2)
	assert.Equal(t, 5, types[0].TypeID)
	assert.Equal(t, 6, types[1].TypeID)
}

func TestReadHeader_LenientNumericFields(t *testing.T) {
	// Non-numeric numeric fields decode to zero instead of failing.
	content := "%;type;x;NoID;map\n0;0;0;8;8;0;1\n"

	hdr, err := ReadHeader(strings.NewReader(content), DefaultDelimiter)
	require.NoError(t, err)
	require.NotNil(t, hdr.Registry.GetType(0))
	assert.Equal(t, "NoID", hdr.Registry.GetType(0).Name)
}
