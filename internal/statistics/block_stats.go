// Package statistics aggregates loaded per-frame statistics data into
// size-labeled groups for charting.
package statistics

import (
	"fmt"
	"sort"

	"github.com/vstats-analysis/pkg/model"
)

// DataKind tells whether a group counts scalar values or vectors.
type DataKind int

const (
	// KindValue groups scalar block values.
	KindValue DataKind = iota
	// KindVector groups vector displacement end points.
	KindVector
)

// String returns a human-readable kind name.
func (k DataKind) String() string {
	if k == KindVector {
		return "vector"
	}
	return "value"
}

// ValueCount is one distinct scalar value and its occurrence count.
type ValueCount struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// VectorCount is one distinct displacement end point and its occurrence
// count.
type VectorCount struct {
	DX    int `json:"dx"`
	DY    int `json:"dy"`
	Count int `json:"count"`
}

// SizeGroup holds the tallied occurrences of one block-size label. Either
// Values or Vectors is populated, depending on Kind.
type SizeGroup struct {
	Label  string   `json:"label"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Kind   DataKind `json:"kind"`

	Values  []ValueCount  `json:"values,omitempty"`
	Vectors []VectorCount `json:"vectors,omitempty"`
}

// sizeLabel builds the "<width>x<height>" group label.
func sizeLabel(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}

// GroupByBlockSize tallies one frame's decoded data by block-size label:
// scalar values grouped by distinct value, vectors grouped by distinct
// displacement end point. Value groups come first, then vector groups,
// each ordered by ascending block width, ties broken by the full label.
func GroupByBlockSize(data *model.FrameTypeData) []SizeGroup {
	type dims struct{ w, h int }

	valueCounts := make(map[dims]map[int]int)
	for _, v := range data.Values {
		d := dims{v.Width, v.Height}
		if valueCounts[d] == nil {
			valueCounts[d] = make(map[int]int)
		}
		valueCounts[d][v.Value]++
	}

	type point struct{ dx, dy int }
	vectorCounts := make(map[dims]map[point]int)
	for _, v := range data.Vectors {
		d := dims{v.Width, v.Height}
		if vectorCounts[d] == nil {
			vectorCounts[d] = make(map[point]int)
		}
		vectorCounts[d][point{v.DX, v.DY}]++
	}

	groups := make([]SizeGroup, 0, len(valueCounts)+len(vectorCounts))

	for d, counts := range valueCounts {
		g := SizeGroup{
			Label:  sizeLabel(d.w, d.h),
			Width:  d.w,
			Height: d.h,
			Kind:   KindValue,
			Values: make([]ValueCount, 0, len(counts)),
		}
		for value, count := range counts {
			g.Values = append(g.Values, ValueCount{Value: value, Count: count})
		}
		sort.Slice(g.Values, func(i, j int) bool { return g.Values[i].Value < g.Values[j].Value })
		groups = append(groups, g)
	}

	for d, counts := range vectorCounts {
		g := SizeGroup{
			Label:   sizeLabel(d.w, d.h),
			Width:   d.w,
			Height:  d.h,
			Kind:    KindVector,
			Vectors: make([]VectorCount, 0, len(counts)),
		}
		for p, count := range counts {
			g.Vectors = append(g.Vectors, VectorCount{DX: p.dx, DY: p.dy, Count: count})
		}
		sort.Slice(g.Vectors, func(i, j int) bool {
			if g.Vectors[i].DX != g.Vectors[j].DX {
				return g.Vectors[i].DX < g.Vectors[j].DX
			}
			return g.Vectors[i].DY < g.Vectors[j].DY
		})
		groups = append(groups, g)
	}

	sortGroups(groups)
	return groups
}

// MergeGroups merges per-frame group lists over a frame range by matching
// label and data kind, summing the counts of equal values and equal end
// points. Merging a single frame's groups is an identity.
func MergeGroups(perFrame ...[]SizeGroup) []SizeGroup {
	type key struct {
		label string
		kind  DataKind
	}

	merged := make(map[key]*SizeGroup)
	order := make([]key, 0)

	for _, groups := range perFrame {
		for i := range groups {
			g := &groups[i]
			k := key{g.Label, g.Kind}
			acc, ok := merged[k]
			if !ok {
				acc = &SizeGroup{Label: g.Label, Width: g.Width, Height: g.Height, Kind: g.Kind}
				merged[k] = acc
				order = append(order, k)
			}
			switch g.Kind {
			case KindValue:
				acc.Values = mergeValueCounts(acc.Values, g.Values)
			case KindVector:
				acc.Vectors = mergeVectorCounts(acc.Vectors, g.Vectors)
			}
		}
	}

	out := make([]SizeGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	sortGroups(out)
	return out
}

func mergeValueCounts(acc, in []ValueCount) []ValueCount {
	counts := make(map[int]int, len(acc)+len(in))
	for _, vc := range acc {
		counts[vc.Value] += vc.Count
	}
	for _, vc := range in {
		counts[vc.Value] += vc.Count
	}
	out := make([]ValueCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, ValueCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

func mergeVectorCounts(acc, in []VectorCount) []VectorCount {
	type point struct{ dx, dy int }
	counts := make(map[point]int, len(acc)+len(in))
	for _, vc := range acc {
		counts[point{vc.DX, vc.DY}] += vc.Count
	}
	for _, vc := range in {
		counts[point{vc.DX, vc.DY}] += vc.Count
	}
	out := make([]VectorCount, 0, len(counts))
	for p, count := range counts {
		out = append(out, VectorCount{DX: p.dx, DY: p.dy, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DX != out[j].DX {
			return out[i].DX < out[j].DX
		}
		return out[i].DY < out[j].DY
	})
	return out
}

// sortGroups orders value groups before vector groups, then by ascending
// block width with the full label as the stable tie-break.
func sortGroups(groups []SizeGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Kind != groups[j].Kind {
			return groups[i].Kind < groups[j].Kind
		}
		if groups[i].Width != groups[j].Width {
			return groups[i].Width < groups[j].Width
		}
		return groups[i].Label < groups[j].Label
	})
}
