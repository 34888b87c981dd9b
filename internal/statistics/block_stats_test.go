package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vstats-analysis/pkg/model"
)

func frameData() *model.FrameTypeData {
	data := &model.FrameTypeData{}
	data.AddBlockValue(0, 0, 16, 16, 1)
	data.AddBlockValue(16, 0, 16, 16, 1)
	data.AddBlockValue(32, 0, 16, 16, 2)
	data.AddBlockValue(0, 0, 32, 32, 1)
	data.AddBlockVector(0, 0, 16, 16, 3, 4)
	data.AddBlockVector(16, 0, 16, 16, 3, 4)
	data.AddBlockVector(0, 0, 8, 8, -1, 0)
	return data
}

func TestGroupByBlockSize(t *testing.T) {
	groups := GroupByBlockSize(frameData())
	require.Len(t, groups, 4)

	// Value groups come first, ordered by ascending width, then vector
	// groups the same way.
	assert.Equal(t, "16x16", groups[0].Label)
	assert.Equal(t, KindValue, groups[0].Kind)
	assert.Equal(t, "32x32", groups[1].Label)
	assert.Equal(t, KindValue, groups[1].Kind)
	assert.Equal(t, "8x8", groups[2].Label)
	assert.Equal(t, KindVector, groups[2].Kind)
	assert.Equal(t, "16x16", groups[3].Label)
	assert.Equal(t, KindVector, groups[3].Kind)

	// Distinct values are tallied in ascending order.
	assert.Equal(t, []ValueCount{{Value: 1, Count: 2}, {Value: 2, Count: 1}}, groups[0].Values)
	assert.Equal(t, []ValueCount{{Value: 1, Count: 1}}, groups[1].Values)

	assert.Equal(t, []VectorCount{{DX: -1, DY: 0, Count: 1}}, groups[2].Vectors)
	assert.Equal(t, []VectorCount{{DX: 3, DY: 4, Count: 2}}, groups[3].Vectors)
}

func TestGroupByBlockSize_Empty(t *testing.T) {
	groups := GroupByBlockSize(&model.FrameTypeData{})
	assert.Empty(t, groups)
}

func TestMergeGroups_SingleFrameIsIdentity(t *testing.T) {
	groups := GroupByBlockSize(frameData())
	merged := MergeGroups(groups)
	assert.Equal(t, groups, merged)
}

func TestMergeGroups_SumsAcrossFrames(t *testing.T) {
	frame0 := &model.FrameTypeData{}
	frame0.AddBlockValue(0, 0, 16, 16, 1)
	frame0.AddBlockValue(16, 0, 16, 16, 2)

	frame1 := &model.FrameTypeData{}
	frame1.AddBlockValue(0, 0, 16, 16, 1)
	frame1.AddBlockValue(0, 0, 8, 8, 7)

	merged := MergeGroups(GroupByBlockSize(frame0), GroupByBlockSize(frame1))
	require.Len(t, merged, 2)

	assert.Equal(t, "8x8", merged[0].Label)
	assert.Equal(t, []ValueCount{{Value: 7, Count: 1}}, merged[0].Values)

	assert.Equal(t, "16x16", merged[1].Label)
	assert.Equal(t, []ValueCount{{Value: 1, Count: 2}, {Value: 2, Count: 1}}, merged[1].Values)
}

func TestMergeGroups_VectorEndpoints(t *testing.T) {
	frame0 := &model.FrameTypeData{}
	frame0.AddBlockVector(0, 0, 16, 16, 1, 1)
	frame0.AddBlockVector(16, 0, 16, 16, 2, 0)

	frame1 := &model.FrameTypeData{}
	frame1.AddBlockVector(0, 0, 16, 16, 1, 1)

	merged := MergeGroups(GroupByBlockSize(frame0), GroupByBlockSize(frame1))
	require.Len(t, merged, 1)
	assert.Equal(t, []VectorCount{
		{DX: 1, DY: 1, Count: 2},
		{DX: 2, DY: 0, Count: 1},
	}, merged[0].Vectors)
}

func TestMergeGroups_NoFrames(t *testing.T) {
	assert.Empty(t, MergeGroups())
}
