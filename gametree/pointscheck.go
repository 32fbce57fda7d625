package gametree

import (
	"fmt"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
)

// pointsCheck compares leaf payouts with the points-as-payout variant of
// the same contract.
type pointsCheck struct {
	alt      *rules.Rules
	toPoints func(*statecache.Fixed, card.PlayerIndex, int) int
}

func newPointsCheck(r *rules.Rules) *pointsCheck {
	alt, toPoints, ok := r.PointsAsPayout()
	if !ok {
		return nil
	}
	return &pointsCheck{alt: alt, toPoints: toPoints}
}

// verify recovers the primary party's points from every player's
// alternate payout and checks them against the cache and against who got
// paid in payout.
func (pc *pointsCheck) verify(seq *stich.Sequence, cache *statecache.Cache, payout Payouts) error {
	parties, ok := pc.alt.PlayerParties(&cache.Fixed)
	if !ok {
		return nil
	}
	points, _ := parties.PrimaryPointsStichs(cache)
	alt := pc.alt.Payout(seq, rules.Expensifiers{}, cache)
	for _, epi := range card.AllPlayers {
		got := pc.toPoints(&cache.Fixed, epi, alt[epi])
		if got != points {
			return fmt.Errorf("%v after %v: points as payout give %d points, primary party has %d",
				epi, seq, got, points)
		}
		won := (points >= rules.PointsToWin) == parties.IsPrimary(epi)
		if won != (payout[epi] > 0) {
			return fmt.Errorf("%v after %v: payout %d with %d primary points", epi, seq, payout[epi], points)
		}
	}
	return nil
}

func (s *searcher) leafPayout() Payouts {
	p := s.rules.Payout(s.seq, rules.Expensifiers{}, s.cache)
	if s.check != nil {
		if err := s.check.verify(s.seq, s.cache, p); err != nil {
			panic(err)
		}
	}
	return p
}
