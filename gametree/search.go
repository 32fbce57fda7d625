// Package gametree searches fully dealt Schafkopf positions to the end of
// the round, computing the payout a player can expect under several
// assumptions about the other players.
package gametree

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
)

type Payouts = [card.NumPlayers]int

// Config selects how a position is searched.
type Config struct {
	// NewFilter defaults to Identity.
	NewFilter FilterFactory
	// Table enables snapshot caching at stich boundaries.
	Table *SnapshotTable
	// AlphaBeta searches a single value per party instead of all strategies
	// when the contract has parties.
	AlphaBeta    bool
	Expensifiers rules.Expensifiers
	// CheckPoints panics at any leaf where the payout disagrees with the
	// points-as-payout variant of the contract. For debugging.
	CheckPoints bool
}

// Game is a fully dealt position.
type Game struct {
	Rules *rules.Rules
	Seq   *stich.Sequence
	AHand card.AHand
}

// CardResult is the payout of self after playing Card.
type CardResult struct {
	Card   card.Card
	Payout PerStrategy[int]
}

type searcher struct {
	rules *rules.Rules
	self  card.PlayerIndex
	ahand card.AHand
	seq   *stich.Sequence
	cache *statecache.Cache

	filter   Filter
	table    *SnapshotTable
	snapshot rules.SnapshotCache
	lohi     [card.NumPlayers]rules.LoHi
	check    *pointsCheck

	useAlphaBeta bool

	nodes int
}

func newSearcher(g Game, self card.PlayerIndex, cfg Config) (*searcher, StrategySet) {
	s := &searcher{
		rules: g.Rules,
		self:  self,
		ahand: g.AHand,
		seq:   g.Seq.Clone(),
	}
	s.cache = statecache.New(s.seq, s.ahand)
	if cfg.CheckPoints {
		s.check = newPointsCheck(s.rules)
	}
	newFilter := cfg.NewFilter
	if newFilter == nil {
		newFilter = Identity
	}
	s.filter = newFilter(s.rules, s.seq, s.ahand)
	active := AllStrategySet
	if l, ok := s.filter.(StrategyLimiter); ok {
		active &= l.Strategies()
	}
	if cfg.Table != nil {
		s.table = cfg.Table
		s.table.NextGeneration()
		s.snapshot = s.rules.SnapshotCache(&s.cache.Fixed)
	}
	if cfg.AlphaBeta {
		if lohi, ok := s.rules.AlphaBetaLoHi(&s.cache.Fixed, self); ok {
			s.lohi = lohi
			s.useAlphaBeta = true
			active &= SelfishStrategySet
		}
	}
	return s, active
}

// Evaluate searches g to the end and returns the payout of self per
// strategy. Only strategies in the returned set were computed.
func Evaluate(g Game, self card.PlayerIndex, cfg Config) (PerStrategy[int], StrategySet) {
	s, active := newSearcher(g, self, cfg)
	var ret PerStrategy[int]
	if s.useAlphaBeta {
		v := s.alphaBeta(math.MinInt, math.MaxInt)
		ret = s.expensifyScalar(v, cfg.Expensifiers)
	} else {
		ret = s.expensify(s.minmax(), cfg.Expensifiers)
	}
	log.Debug().Int("nodes", s.nodes).Str("active", active.String()).Msg("evaluate-done")
	return ret, active
}

// EvaluateCards searches every allowed card of self, who must be the
// player to move. The filter is not applied to self's choices here.
func EvaluateCards(g Game, self card.PlayerIndex, cfg Config) ([]CardResult, StrategySet) {
	if epi := g.Seq.CurrentPlayer(); epi != self {
		panic(fmt.Sprintf("evaluate cards for %v, but %v is to play", self, epi))
	}
	s, active := newSearcher(g, self, cfg)
	allowed := s.rules.AllAllowedCards(s.seq, s.ahand[self])
	ret := make([]CardResult, 0, allowed.Len())
	for c := range allowed.All() {
		res := CardResult{Card: c}
		if s.useAlphaBeta {
			var v int
			s.play(c, func() { v = s.alphaBeta(math.MinInt, math.MaxInt) })
			res.Payout = s.expensifyScalar(v, cfg.Expensifiers)
		} else {
			var ps PerStrategy[Payouts]
			s.play(c, func() { ps = s.minmax() })
			res.Payout = s.expensify(ps, cfg.Expensifiers)
		}
		ret = append(ret, res)
	}
	log.Debug().Int("nodes", s.nodes).Int("cards", len(ret)).Msg("evaluate-cards-done")
	return ret, active
}

func (s *searcher) expensify(ps PerStrategy[Payouts], exp rules.Expensifiers) PerStrategy[int] {
	return MapPerStrategy(ps, func(_ Strategy, p Payouts) int {
		return s.rules.Expensify(&s.cache.Fixed, s.self, p[s.self], exp)
	})
}

func (s *searcher) expensifyScalar(v int, exp rules.Expensifiers) PerStrategy[int] {
	var ret PerStrategy[int]
	e := s.rules.Expensify(&s.cache.Fixed, s.self, v, exp)
	ret[SelfishMin] = e
	ret[SelfishMax] = e
	return ret
}

func (s *searcher) filterActive() bool {
	return s.filter.ContinueWithFilter(s.seq)
}

// play plays c for the player to move, runs f and takes c back.
func (s *searcher) play(c card.Card, f func()) {
	epi := s.seq.CurrentPlayer()
	s.ahand[epi].PlayCard(c)
	s.seq.Zugeben(c, s.rules)
	s.nodes++
	if !s.seq.CurrentStich().IsEmpty() {
		f()
	} else {
		last, _ := s.seq.LastCompleted()
		winner := s.seq.CurrentPlayer()
		s.cache.RegisterStich(last, winner)
		registered := s.filterActive()
		if registered {
			s.filter.RegisterStich(s.seq, &s.ahand)
		}
		f()
		if registered {
			s.filter.UnregisterStich(s.seq, &s.ahand)
		}
		s.cache.UnregisterStich(last, winner)
	}
	s.seq.Undo()
	s.ahand[epi].AddCard(c)
}

func (s *searcher) candidates() card.Set {
	epi := s.seq.CurrentPlayer()
	allowed := s.rules.AllAllowedCards(s.seq, s.ahand[epi])
	if s.filterActive() {
		allowed = s.filter.FilterAllowedCards(s.seq, &s.ahand, allowed)
	}
	return allowed
}

func (s *searcher) snapshotKey() (uint64, bool) {
	if s.table == nil || !s.seq.CurrentStich().IsEmpty() || !s.snapshot.ContinueWithCache(s.seq) {
		return 0, false
	}
	return s.snapshot.Key(s.seq, s.cache), true
}

// better reports whether epi, choosing under strategy st, prefers cand
// over cur. Under Min and Max every player, self included, moves the
// payout of self the same way.
func (s *searcher) better(st Strategy, epi card.PlayerIndex, cand, cur Payouts) bool {
	self := s.self
	switch st {
	case Min:
		return cand[self] < cur[self]
	case Max:
		return cand[self] > cur[self]
	}
	if cand[epi] != cur[epi] {
		return cand[epi] > cur[epi]
	}
	if st == SelfishMin {
		return cand[self] < cur[self]
	}
	return cand[self] > cur[self]
}

func (s *searcher) minmax() PerStrategy[Payouts] {
	if s.seq.IsFinished() {
		p := s.leafPayout()
		return PerStrategy[Payouts]{p, p, p, p}
	}
	key, cached := s.snapshotKey()
	if cached {
		if e, ok := s.table.lookup(key); ok {
			return MapPerStrategy(e.payouts, func(_ Strategy, p [card.NumPlayers]int32) Payouts {
				var ret Payouts
				for epi, v := range p {
					ret[epi] = int(v)
				}
				return ret
			})
		}
	}
	epi := s.seq.CurrentPlayer()
	var best PerStrategy[Payouts]
	first := true
	for c := range s.candidates().All() {
		var child PerStrategy[Payouts]
		s.play(c, func() { child = s.minmax() })
		for _, st := range AllStrategies {
			if first || s.better(st, epi, child[st], best[st]) {
				best[st] = child[st]
			}
		}
		first = false
	}
	if cached {
		s.table.store(key, tableEntry{
			flag: TTExact,
			payouts: MapPerStrategy(best, func(_ Strategy, p Payouts) [card.NumPlayers]int32 {
				var ret [card.NumPlayers]int32
				for epi, v := range p {
					ret[epi] = int32(v)
				}
				return ret
			}),
		})
	}
	return best
}

// alphaBeta returns the payout of self when every player on self's side
// maximizes it and everybody else minimizes it. Results outside
// (alpha, beta) are bounds only.
func (s *searcher) alphaBeta(alpha, beta int) int {
	if s.seq.IsFinished() {
		return s.leafPayout()[s.self]
	}
	hint := s.rules.PayoutHints(s.seq, rules.Expensifiers{}, s.cache)[s.self]
	if lo, ok := hint.Lo(); ok {
		if lo >= beta {
			return lo
		}
		alpha = max(alpha, lo)
	}
	if hi, ok := hint.Hi(); ok {
		if hi <= alpha {
			return hi
		}
		beta = min(beta, hi)
	}
	if v, ok := hint.Exact(); ok {
		return v
	}

	key, cached := s.snapshotKey()
	if cached {
		if e, ok := s.table.lookup(key); ok {
			v := int(e.scalar)
			switch e.flag {
			case TTExact:
				return v
			case TTLower:
				alpha = max(alpha, v)
			case TTUpper:
				beta = min(beta, v)
			}
			if alpha >= beta {
				return v
			}
		}
	}
	alphaOrig, betaOrig := alpha, beta

	maximizing := s.lohi[s.seq.CurrentPlayer()] == rules.Hi
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	for c := range s.candidates().All() {
		var v int
		s.play(c, func() { v = s.alphaBeta(alpha, beta) })
		if maximizing {
			best = max(best, v)
			alpha = max(alpha, best)
		} else {
			best = min(best, v)
			beta = min(beta, best)
		}
		if alpha >= beta {
			break
		}
	}

	if cached {
		e := tableEntry{scalar: int32(best)}
		switch {
		case best <= alphaOrig:
			e.flag = TTUpper
		case best >= betaOrig:
			e.flag = TTLower
		default:
			e.flag = TTExact
		}
		s.table.store(key, e)
	}
	return best
}
