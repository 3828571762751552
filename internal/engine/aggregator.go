package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"salaryviz/internal/models"
)

// ErrNotNumeric is returned when the aggregated value field is not a
// numeric column.
var ErrNotNumeric = errors.New("field is not numeric")

// Defaults used by the overview chart.
const (
	DefaultMinCount = 10
	DefaultTopN     = 15
)

// AggregateOptions controls which groups survive aggregation.
type AggregateOptions struct {
	// MinCount drops groups with fewer rows. Zero or negative keeps
	// every group.
	MinCount int

	// TopN keeps at most this many groups. Zero or negative keeps all.
	TopN int
}

// DefaultAggregateOptions returns the thresholds used by the overview.
func DefaultAggregateOptions() AggregateOptions {
	return AggregateOptions{MinCount: DefaultMinCount, TopN: DefaultTopN}
}

// Aggregate groups rows by key and summarizes value per group. The
// result is sorted by mean descending; groups with equal means keep the
// order in which their key first appeared in rows. The result is never
// nil. value must name a numeric column.
func Aggregate(rows []models.Row, key, value models.Field, opts AggregateOptions) ([]models.AggregateGroup, error) {
	if _, ok := (models.Row{}).Number(value); !ok {
		return nil, fmt.Errorf("aggregate %s: %w", value, ErrNotNumeric)
	}

	// 1. Group (first-appearance order)
	index := make(map[string]int)
	var keys []string
	var values [][]float64
	for _, r := range rows {
		k := r.Text(key)
		v, _ := r.Number(value)
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			values = append(values, nil)
		}
		values[i] = append(values[i], v)
	}

	// 2. Summarize + threshold
	groups := make([]models.AggregateGroup, 0, len(keys))
	for i, k := range keys {
		if len(values[i]) < opts.MinCount {
			continue
		}
		groups = append(groups, models.AggregateGroup{
			Key:   k,
			Mean:  stats.Mean(values[i]),
			Count: len(values[i]),
		})
	}

	// 3. Sort (stable, so ties keep first-appearance order)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Mean > groups[j].Mean })

	// 4. Truncate
	if opts.TopN > 0 && len(groups) > opts.TopN {
		groups = groups[:opts.TopN]
	}
	return groups, nil
}

// MaxMean returns the largest group mean, or 0 for no groups.
func MaxMean(groups []models.AggregateGroup) float64 {
	max := 0.0
	for i, g := range groups {
		if i == 0 || g.Mean > max {
			max = g.Mean
		}
	}
	return max
}
