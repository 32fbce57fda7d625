package stats

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/aybabtme/uniplot/histogram"
)

// PayoutStats aggregates the payouts of one card or contract over many
// deals.
type PayoutStats struct {
	min, max int
	stat     Statistic
	// counts of negative, zero and positive payouts
	bySign [3]int
	counts map[int]int
}

func NewPayoutStats() *PayoutStats {
	return &PayoutStats{min: math.MaxInt, max: math.MinInt, counts: make(map[int]int)}
}

func (ps *PayoutStats) Push(payout int) {
	ps.min = min(ps.min, payout)
	ps.max = max(ps.max, payout)
	ps.stat.Push(payout)
	switch {
	case payout < 0:
		ps.bySign[0]++
	case payout == 0:
		ps.bySign[1]++
	default:
		ps.bySign[2]++
	}
	ps.counts[payout]++
}

// Merge adds all payouts seen by other.
func (ps *PayoutStats) Merge(other *PayoutStats) {
	if other.Count() == 0 {
		return
	}
	ps.min = min(ps.min, other.min)
	ps.max = max(ps.max, other.max)
	ps.stat.Add(other.stat)
	for i, n := range other.bySign {
		ps.bySign[i] += n
	}
	for v, n := range other.counts {
		ps.counts[v] += n
	}
}

func (ps *PayoutStats) Count() int {
	return ps.stat.Iterations()
}

// Min and Max are zero for empty stats.
func (ps *PayoutStats) Min() int {
	if ps.Count() == 0 {
		return 0
	}
	return ps.min
}

func (ps *PayoutStats) Max() int {
	if ps.Count() == 0 {
		return 0
	}
	return ps.max
}

func (ps *PayoutStats) Avg() float64 {
	return ps.stat.Mean()
}

func (ps *PayoutStats) StandardError() float64 {
	return ps.stat.StandardError()
}

// Negative, Zero and Positive count payouts by sign.
func (ps *PayoutStats) Negative() int { return ps.bySign[0] }
func (ps *PayoutStats) Zero() int     { return ps.bySign[1] }
func (ps *PayoutStats) Positive() int { return ps.bySign[2] }

// Occurrences returns how often payout was seen.
func (ps *PayoutStats) Occurrences(payout int) int {
	return ps.counts[payout]
}

func (ps *PayoutStats) sorted() []int {
	keys := make([]int, 0, len(ps.counts))
	for k := range ps.counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FprintHistogram draws the payout distribution.
func (ps *PayoutStats) FprintHistogram(w io.Writer, bins int) error {
	if ps.Count() == 0 {
		return nil
	}
	if ps.min == ps.max {
		_, err := fmt.Fprintf(w, "%d: %d\n", ps.min, ps.Count())
		return err
	}
	data := make([]float64, 0, ps.Count())
	for _, v := range ps.sorted() {
		for range ps.counts[v] {
			data = append(data, float64(v))
		}
	}
	return histogram.Fprint(w, histogram.Hist(bins, data), histogram.Linear(40))
}

func (ps *PayoutStats) String() string {
	if ps.Count() == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%.1f/%d (-%d =%d +%d)", ps.Min(), ps.Avg(), ps.Max(),
		ps.Negative(), ps.Zero(), ps.Positive())
}
