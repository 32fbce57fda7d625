package montecarlo

import (
	"github.com/rs/zerolog/log"

	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/stats"
)

// StoppingCondition ends sampling early once one card is ahead of all
// others with the given confidence.
type StoppingCondition int

const (
	StopNone StoppingCondition = iota
	Stop95
	Stop99
)

const (
	// deals between two checks of the stopping condition
	stopConditionCheckInterval = 16
	// minimum deals before any card is cut off
	minDealsBeforeStop = 32
)

func (sc StoppingCondition) confidence() stats.Confidence {
	if sc == Stop99 {
		return stats.Confidence99
	}
	return stats.Confidence95
}

// shouldStop marks cards that cannot catch up with the leader under st and
// reports whether at most one card is left. Callers hold the stats lock.
func shouldStop(cards []*CardStats, st gametree.Strategy, sc StoppingCondition, deals int) bool {
	if sc == StopNone || deals < minDealsBeforeStop {
		return false
	}
	if len(cards) < 2 {
		return true
	}
	conf := sc.confidence()
	var leader *CardStats
	for _, c := range cards {
		if leader == nil || c.Payout[st].Avg() > leader.Payout[st].Avg() {
			leader = c
		}
	}
	μ := leader.Payout[st].Avg()
	e := conf.Margin(leader.Payout[st])
	ignored, newIgnored := 0, 0
	for _, c := range cards {
		if c == leader {
			continue
		}
		if c.ignore {
			ignored++
			continue
		}
		μi := c.Payout[st].Avg()
		ei := conf.Margin(c.Payout[st])
		if passTest(μ, e, μi, ei) {
			c.ignore = true
			newIgnored++
		}
	}
	if newIgnored > 0 {
		log.Debug().Int("newIgnored", newIgnored).Int("deals", deals).Msg("suggest-cut-off")
	}
	return ignored+newIgnored >= len(cards)-1
}

// passTest: determine if a random variable X > Y with the given
// confidence margins; return true if X > Y.
func passTest(μ, e, μi, ei float64) bool {
	return (μ - e) > (μi + ei)
}
