package stats

import "gonum.org/v1/gonum/stat/distuv"

// Confidence is a two-sided confidence level in percent.
type Confidence float64

const (
	Confidence95 Confidence = 95
	Confidence99 Confidence = 99
)

// Z returns how many standard errors the true mean may lie from a sample
// mean at level c.
func (c Confidence) Z() float64 {
	return distuv.UnitNormal.Quantile((1 + float64(c)/100) / 2)
}

// Margin is the half-width of the confidence interval around the mean of s,
// a Statistic or PayoutStats.
func (c Confidence) Margin(s interface{ StandardError() float64 }) float64 {
	return c.Z() * s.StandardError()
}
