// Package analyze aggregates decoded trace records into report-friendly
// summaries, such as the most expensive functions of a run.
package analyze

import (
	"fmt"
	"sort"

	"github.com/pgrind/pgrind/pkg/trace"
)

// SortKey selects which cost a hotspot list is ordered by.
type SortKey string

const (
	BySelfCost      SortKey = "self"
	ByInclusiveCost SortKey = "inclusive"
)

// ParseSortKey validates a caller-supplied sort key string.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case BySelfCost, ByInclusiveCost:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q (want self or inclusive)", s)
}

// FunctionSummary is one row of a hotspot report.
type FunctionSummary struct {
	Nr              uint32
	Function        string
	File            string
	Line            uint32
	SelfCost        uint32
	InclusiveCost   uint32
	InvocationCount uint32

	FormattedSelfCost      string
	FormattedInclusiveCost string
}

// Hotspots decodes every function record and returns the limit most
// expensive ones ordered by the chosen cost, descending. A limit of 0 or
// less returns all functions.
func Hotspots(r *trace.Reader, by SortKey, limit int) ([]FunctionSummary, error) {
	count := r.FunctionCount()
	summaries := make([]FunctionSummary, 0, count)

	for nr := uint32(0); nr < count; nr++ {
		info, err := r.FunctionInfo(nr)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, FunctionSummary{
			Nr:                     info.Nr,
			Function:               info.Function,
			File:                   info.File,
			Line:                   info.Line,
			SelfCost:               info.SelfCost,
			InclusiveCost:          info.InclusiveCost,
			InvocationCount:        info.InvocationCount,
			FormattedSelfCost:      info.FormattedSelfCost,
			FormattedInclusiveCost: info.FormattedInclusiveCost,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return cost(summaries[i], by) > cost(summaries[j], by)
	})

	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// CostShare trims a sorted hotspot list to the shortest prefix whose
// cumulative cost reaches the given share (0 < share <= 1) of the list's
// total, the usual "show the functions behind 90% of the run" view.
func CostShare(summaries []FunctionSummary, by SortKey, share float64) []FunctionSummary {
	if share <= 0 || share >= 1 {
		return summaries
	}

	var total uint64
	for _, s := range summaries {
		total += uint64(cost(s, by))
	}
	if total == 0 {
		return summaries
	}

	threshold := share * float64(total)
	var running float64
	for i, s := range summaries {
		running += float64(cost(s, by))
		if running >= threshold {
			return summaries[:i+1]
		}
	}
	return summaries
}

func cost(s FunctionSummary, by SortKey) uint32 {
	if by == ByInclusiveCost {
		return s.InclusiveCost
	}
	return s.SelfCost
}
