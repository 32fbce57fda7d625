package rules

import (
	"fmt"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
)

// Stoss records who doubled the game during play and when.
type Stoss struct {
	Epi          card.PlayerIndex
	NCardsPlayed int
}

// Expensifiers carries everything that scales or shifts a raw payout.
type Expensifiers struct {
	Stock     int
	Doublings [card.NumPlayers]bool
	Stosse    []Stoss
}

// StossDoublingFactor is 2^(stosses + doublings).
func (e Expensifiers) StossDoublingFactor() int {
	k := len(e.Stosse)
	for _, d := range e.Doublings {
		if d {
			k++
		}
	}
	return 1 << k
}

// Payout returns the payout of a finished round per player. The stoss and
// doubling factor is applied last, on top of the contract payout; stock
// payments are added unscaled.
func (r *Rules) Payout(seq *stich.Sequence, exp Expensifiers, cache *statecache.Cache) [card.NumPlayers]int {
	if !seq.IsFinished() {
		panic(fmt.Sprintf("payout of unfinished round %v", seq))
	}
	if r.kind == KindRamsch {
		ret := r.ramschPayout(cache)
		for epi := range ret {
			ret[epi] = r.expensifyFor(PlayerParties{}, card.PlayerIndex(epi), ret[epi], exp)
		}
		return ret
	}
	parties, _ := r.PlayerParties(&cache.Fixed)
	points, stichs := parties.PrimaryPointsStichs(cache)
	return r.payoutForOutcome(cache, parties, exp, points, stichs)
}

// primaryPayout is the unmultiplied payout to each primary player given the
// primary party's final points and stichs. It is non-decreasing in points
// and, for all contracts except Bettel, in stichs; Bettel is non-increasing
// in stichs. PayoutHints relies on this.
func (r *Rules) primaryPayout(fixed *statecache.Fixed, parties PlayerParties, points, stichs int) int {
	totalStichs := r.kurzlang.CardsPerPlayer()
	switch r.kind {
	case KindBettel:
		if stichs == 0 {
			return r.bettel.Price
		}
		return -r.bettel.Price
	case KindRufspiel:
		if r.pointsAsPayout {
			return normalizedPoints(points)
		}
		return r.pointBasedPayout(r.rufspiel.Payout, fixed, parties, points, stichs, totalStichs)
	case KindSolo:
		s := r.solo
		switch s.Mode {
		case Tout:
			n := (s.Payout.Base + r.laufendePayout(s.Payout.Laufende, fixed, parties)) * 2
			if stichs == totalStichs {
				return n
			}
			return -n
		case Sie:
			n := (s.Payout.Base + s.Payout.Laufende.PerLauf*totalStichs) * 4
			if r.holdsTopTrumpfs(fixed.Dealt(s.Declarer)) {
				return n
			}
			return -n
		}
		if r.pointsAsPayout {
			return normalizedPoints(points)
		}
		return r.pointBasedPayout(s.Payout, fixed, parties, points, stichs, totalStichs)
	}
	panic(fmt.Sprintf("no primary payout for %v", r.kind))
}

func (r *Rules) pointBasedPayout(p PayoutParams, fixed *statecache.Fixed, parties PlayerParties, points, stichs, totalStichs int) int {
	win := points >= PointsToWin
	n := p.Base
	if points <= 30 || points >= 90 {
		n += p.Extra
	}
	if (win && stichs == totalStichs) || (!win && stichs == 0) {
		n += p.Extra
	}
	n += r.laufendePayout(p.Laufende, fixed, parties)
	if !win {
		return -n
	}
	return n
}

// Laufende counts the run of top trumps held by one party.
func (r *Rules) Laufende(fixed *statecache.Fixed, parties PlayerParties) int {
	n := 0
	var first bool
	for _, c := range r.decider.TrumpfsInDescendingOrder() {
		if !r.kurzlang.Contains(c) {
			continue
		}
		prim := parties.IsPrimary(fixed.Owner(c))
		if n == 0 {
			first = prim
		} else if prim != first {
			break
		}
		n++
	}
	return n
}

func (r *Rules) laufendePayout(lp LaufendeParams, fixed *statecache.Fixed, parties PlayerParties) int {
	n := r.Laufende(fixed, parties)
	if n < lp.LBound {
		return 0
	}
	return n * lp.PerLauf
}

// normalizedPoints maps primary points to a payout that is positive exactly
// when the primary party wins.
func normalizedPoints(points int) int {
	if points >= PointsToWin {
		return points - (PointsToWin - 1)
	}
	return points - PointsToWin
}

func pointsFromNormalized(n int) int {
	if n > 0 {
		return n + PointsToWin - 1
	}
	return n + PointsToWin
}

// PointsAsPayout returns an alternate contract whose payout is the
// normalized primary-party points, together with a function that recovers
// the primary points from a player's alternate payout. Only point-based
// contracts support it.
func (r *Rules) PointsAsPayout() (*Rules, func(fixed *statecache.Fixed, epi card.PlayerIndex, payout int) int, bool) {
	switch {
	case r.kind == KindRufspiel, r.kind == KindSolo && r.solo.Mode == PointBased:
	default:
		return nil, nil, false
	}
	alt := *r
	alt.pointsAsPayout = true
	toPoints := func(fixed *statecache.Fixed, epi card.PlayerIndex, payout int) int {
		parties, _ := alt.PlayerParties(fixed)
		n := payout / parties.Multiplier(epi)
		if !parties.IsPrimary(epi) {
			n = -n
		}
		return pointsFromNormalized(n)
	}
	return &alt, toPoints, true
}

func (r *Rules) ramschDurchmarsch(cache *statecache.Cache) (card.PlayerIndex, bool) {
	dm := r.ramsch.Durchmarsch
	best := card.NoPlayer
	for epi, p := range cache.Changing.Players {
		var ok bool
		switch dm.Kind {
		case DurchmarschAll:
			ok = p.Stichs == r.kurzlang.CardsPerPlayer()
		case DurchmarschAtLeast:
			ok = p.Points >= dm.Points
		}
		if ok && (best == card.NoPlayer || p.Points > cache.Changing.Players[best].Points) {
			best = card.PlayerIndex(epi)
		}
	}
	return best, best != card.NoPlayer
}

// RamschLoser returns the player with the most points. Among tied players
// the one who was dealt the highest trump loses; if none of them was dealt
// a trump, the lowest seat loses.
func (r *Rules) RamschLoser(cache *statecache.Cache) card.PlayerIndex {
	most := -1
	var tied []card.PlayerIndex
	for epi, p := range cache.Changing.Players {
		switch {
		case p.Points > most:
			most = p.Points
			tied = []card.PlayerIndex{card.PlayerIndex(epi)}
		case p.Points == most:
			tied = append(tied, card.PlayerIndex(epi))
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	for _, c := range r.decider.TrumpfsInDescendingOrder() {
		owner := cache.Fixed.Owner(c)
		for _, epi := range tied {
			if owner == epi {
				return epi
			}
		}
	}
	return tied[0]
}

func (r *Rules) ramschPayout(cache *statecache.Cache) [card.NumPlayers]int {
	var ret [card.NumPlayers]int
	price := r.ramsch.Price
	if winner, ok := r.ramschDurchmarsch(cache); ok {
		for epi := range ret {
			ret[epi] = -price
		}
		ret[winner] = price * (card.NumPlayers - 1)
		return ret
	}
	loser := r.RamschLoser(cache)
	var jungfrauen []card.PlayerIndex
	for epi, p := range cache.Changing.Players {
		if p.Stichs == 0 {
			jungfrauen = append(jungfrauen, card.PlayerIndex(epi))
		}
	}
	isJungfrau := func(epi card.PlayerIndex) bool {
		for _, j := range jungfrauen {
			if j == epi {
				return true
			}
		}
		return false
	}
	total := 0
	for epi := range ret {
		if card.PlayerIndex(epi) == loser {
			continue
		}
		v := price
		switch r.ramsch.Jungfrau {
		case JungfrauDoubleAll:
			if len(jungfrauen) > 0 {
				v *= 2
			}
		case JungfrauDoubleIndividuallyOnce:
			if isJungfrau(card.PlayerIndex(epi)) {
				v *= 2
			}
		case JungfrauDoubleIndividuallyMultiple:
			if isJungfrau(card.PlayerIndex(epi)) {
				v <<= len(jungfrauen)
			}
		}
		ret[epi] = v
		total += v
	}
	ret[loser] = -total
	return ret
}
