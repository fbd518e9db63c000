// Package rank maps aggregated points to competitive rank tiers.
//
// Tier assignment is a pure, monotonic step function over a configurable
// ascending threshold table: more points can never demote a player while
// the table is fixed. The global ordinal rank comes from the leaderboard
// index, not from this package.
package rank

import (
	"errors"
	"fmt"
	"sort"
)

// Threshold is one row of the tier table: the tier applies from MinPoints
// up to the next row's MinPoints.
type Threshold struct {
	Tier      string
	MinPoints int
}

// Table is a validated ascending tier threshold table.
type Table struct {
	thresholds []Threshold
}

// Sentinel kinds for rank errors.
var (
	ErrInvalidTable = errors.New("invalid rank table")
)

// DefaultThresholds returns the platform's standard six-tier table.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Tier: "Newbie", MinPoints: 0},
		{Tier: "Apprentice", MinPoints: 100},
		{Tier: "Hacker", MinPoints: 500},
		{Tier: "Expert", MinPoints: 1500},
		{Tier: "Elite", MinPoints: 3000},
		{Tier: "Legend", MinPoints: 5000},
	}
}

// NewTable builds a table from thresholds, which must be non-empty, start
// at 0 points, use unique tier names and strictly ascend.
func NewTable(thresholds []Threshold) (*Table, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: no thresholds", ErrInvalidTable)
	}

	rows := make([]Threshold, len(thresholds))
	copy(rows, thresholds)
	sort.Slice(rows, func(i, j int) bool { return rows[i].MinPoints < rows[j].MinPoints })

	if rows[0].MinPoints != 0 {
		return nil, fmt.Errorf("%w: lowest tier must start at 0 points", ErrInvalidTable)
	}
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		if row.Tier == "" {
			return nil, fmt.Errorf("%w: empty tier name", ErrInvalidTable)
		}
		if _, dup := seen[row.Tier]; dup {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidTable, row.Tier)
		}
		seen[row.Tier] = struct{}{}
		if i > 0 && row.MinPoints == rows[i-1].MinPoints {
			return nil, fmt.Errorf("%w: duplicate threshold %d", ErrInvalidTable, row.MinPoints)
		}
	}

	return &Table{thresholds: rows}, nil
}

// NewTableFromMap builds a table from tier -> minimum points, as loaded
// from configuration.
func NewTableFromMap(thresholds map[string]int) (*Table, error) {
	rows := make([]Threshold, 0, len(thresholds))
	for tier, minPoints := range thresholds {
		rows = append(rows, Threshold{Tier: tier, MinPoints: minPoints})
	}
	return NewTable(rows)
}

// TierFor returns the tier for a point total. Negative totals map to the
// lowest tier.
func (t *Table) TierFor(totalPoints int) string {
	tier := t.thresholds[0].Tier
	for _, row := range t.thresholds {
		if totalPoints < row.MinPoints {
			break
		}
		tier = row.Tier
	}
	return tier
}

// Thresholds returns a copy of the table rows in ascending order.
func (t *Table) Thresholds() []Threshold {
	out := make([]Threshold, len(t.thresholds))
	copy(out, t.thresholds)
	return out
}
