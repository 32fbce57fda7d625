package stats

import "math"

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic keeps running moments of integer samples. The sums are exact,
// so results do not depend on the order samples arrive in from threads.
type Statistic struct {
	n     int
	sum   int64
	sumSq int64
}

func (s *Statistic) Push(val int) {
	s.n++
	s.sum += int64(val)
	s.sumSq += int64(val) * int64(val)
}

// Add folds in everything other has seen.
func (s *Statistic) Add(other Statistic) {
	if other.n == 0 {
		return
	}
	s.n += other.n
	s.sum += other.sum
	s.sumSq += other.sumSq
}

func (s *Statistic) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return float64(s.sum) / float64(s.n)
}

// Variance is the sample variance.
func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0
	}
	n := int64(s.n)
	return float64(n*s.sumSq-s.sum*s.sum) / float64(n*(n-1))
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) Iterations() int {
	return s.n
}
