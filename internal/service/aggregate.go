package service

import (
	"context"
	"fmt"

	"github.com/vstats-analysis/internal/statistics"
	apperrors "github.com/vstats-analysis/pkg/errors"
	"github.com/vstats-analysis/pkg/model"
)

// chartSnapshot returns the chart cache entry for the pair, if present.
// Aggregation reads this cache so that charting a frame that is also being
// rendered never touches the file twice.
func (s *StatisticsFile) chartSnapshot(frame, typeID int) (*model.FrameTypeData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chartCache.Get(frame, typeID)
}

// AggregateFrame groups one frame's data for the type by block-size label.
func (s *StatisticsFile) AggregateFrame(ctx context.Context, frame, typeID int) ([]statistics.SizeGroup, error) {
	data, ok := s.chartSnapshot(frame, typeID)
	if !ok {
		var err error
		data, err = s.LoadFrameType(ctx, frame, typeID)
		if err != nil {
			return nil, err
		}
	}
	return statistics.GroupByBlockSize(data), nil
}

// AggregateRange groups the type's data over the inclusive frame range
// [first, last], merging equal block-size labels across frames. Frames
// without indexed data for the type contribute nothing.
func (s *StatisticsFile) AggregateRange(ctx context.Context, first, last, typeID int) ([]statistics.SizeGroup, error) {
	if first > last {
		return nil, apperrors.Wrap(apperrors.CodeConfigError,
			fmt.Sprintf("invalid frame range [%d, %d]", first, last), nil)
	}

	perFrame := make([][]statistics.SizeGroup, 0, last-first+1)
	for frame := first; frame <= last; frame++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		s.mu.Lock()
		indexed := s.index.Contains(frame, typeID)
		s.mu.Unlock()
		if !indexed {
			continue
		}

		data, ok := s.chartSnapshot(frame, typeID)
		if !ok {
			var err error
			data, err = s.LoadFrameType(ctx, frame, typeID)
			if err != nil {
				return nil, err
			}
		}
		if data.Len() == 0 {
			continue
		}
		perFrame = append(perFrame, statistics.GroupByBlockSize(data))
	}
	return statistics.MergeGroups(perFrame...), nil
}
