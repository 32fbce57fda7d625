package gametree

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
	"github.com/domino14/schafkopf/testcommon"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

var testDeal = testcommon.Deal

func testRules() []*rules.Rules {
	return testcommon.Contracts()
}

func playLowest(r *rules.Rules, ahand card.AHand, n int) Game {
	seq, ahand := testcommon.PlayLowest(r, ahand, n)
	return Game{Rules: r, Seq: seq, AHand: ahand}
}

func TestSoloWithAllOber(t *testing.T) {
	is := is.New(t)
	r, seq, ahand := testcommon.AllObers()
	g := Game{Rules: r, Seq: seq, AHand: ahand}
	// Schneider, schwarz and four laufende on top of the base.
	payout, active := Evaluate(g, 0, Config{})
	is.Equal(active, AllStrategySet)
	is.Equal(payout, PerStrategy[int]{330, 330, 330, 330})
	for _, epi := range []card.PlayerIndex{1, 2, 3} {
		payout, _ = Evaluate(g, epi, Config{})
		is.Equal(payout, PerStrategy[int]{-110, -110, -110, -110})
	}

	results, _ := EvaluateCards(g, 0, Config{AlphaBeta: true})
	is.Equal(len(results), 4)
	for _, res := range results {
		is.Equal(res.Payout[SelfishMin], 330)
	}
}

func TestStrategyOrder(t *testing.T) {
	is := is.New(t)
	for _, r := range testRules() {
		g := playLowest(r, testDeal, 16)
		self := g.Seq.CurrentPlayer()
		results, _ := EvaluateCards(g, self, Config{})
		for _, res := range results {
			p := res.Payout
			is.True(p[Min] <= p[SelfishMin])
			is.True(p[Min] <= p[SelfishMax])
			is.True(p[SelfishMin] <= p[Max])
			is.True(p[SelfishMax] <= p[Max])
		}
	}
}

func TestSnapshotCacheAndFilterConsistency(t *testing.T) {
	is := is.New(t)
	table := NewSnapshotTable(0, 1)
	for _, r := range testRules() {
		g := playLowest(r, testDeal, 16)
		self := g.Seq.CurrentPlayer()
		plain, _ := EvaluateCards(g, self, Config{})
		for _, cfg := range []Config{
			{Table: table},
			{NewFilter: Equivalence(8)},
			{NewFilter: Equivalence(6), Table: table},
		} {
			got, active := EvaluateCards(g, self, cfg)
			is.Equal(active, AllStrategySet)
			is.Equal(got, plain)
		}
		st := table.Stats()
		is.True(st.Lookups > 0)
		is.True(st.Created > 0)
	}
}

func TestAlphaBetaMatchesSelfish(t *testing.T) {
	is := is.New(t)
	table := NewSnapshotTable(0, 1)
	for _, r := range testRules() {
		g := playLowest(r, testDeal, 16)
		self := g.Seq.CurrentPlayer()
		plain, _ := EvaluateCards(g, self, Config{})
		for _, cfg := range []Config{
			{AlphaBeta: true},
			{AlphaBeta: true, Table: table, NewFilter: Equivalence(8)},
		} {
			got, active := EvaluateCards(g, self, cfg)
			if r.Kind() == rules.KindRamsch {
				is.Equal(active, AllStrategySet) // no parties in Ramsch
				is.Equal(got, plain)
				continue
			}
			is.Equal(active, SelfishStrategySet)
			is.Equal(len(got), len(plain))
			for i := range got {
				is.Equal(got[i].Card, plain[i].Card)
				is.Equal(got[i].Payout[SelfishMin], plain[i].Payout[SelfishMin])
				is.Equal(got[i].Payout[SelfishMax], plain[i].Payout[SelfishMax])
			}
		}
	}
}

func TestEvaluateIsBestCard(t *testing.T) {
	is := is.New(t)
	r := testcommon.HerzSolo()
	g := playLowest(r, testDeal, 16)
	self := g.Seq.CurrentPlayer()
	results, _ := EvaluateCards(g, self, Config{})
	whole, _ := Evaluate(g, self, Config{})
	best := results[0].Payout[Max]
	for _, res := range results {
		best = max(best, res.Payout[Max])
	}
	is.Equal(whole[Max], best)
}

func TestExpensifiersScaleResult(t *testing.T) {
	is := is.New(t)
	r := testcommon.HerzSolo()
	g := playLowest(r, testDeal, 20)
	self := g.Seq.CurrentPlayer()
	plain, _ := Evaluate(g, self, Config{})
	stossed, _ := Evaluate(g, self, Config{Expensifiers: rules.Expensifiers{Stosse: []rules.Stoss{{Epi: 1}}}})
	for _, st := range AllStrategies {
		is.Equal(stossed[st], 2*plain[st])
	}
}

func TestEquivalenceFilter(t *testing.T) {
	is := is.New(t)
	r := testcommon.HerzSolo()
	seq := stich.NewSequence(card.Lang)
	f := Equivalence(8)(r, seq, testDeal)
	is.True(f.ContinueWithFilter(seq))
	ahand := testDeal
	// Player 1 holds HO and SO next to each other, E9 and E8 as well.
	allowed := r.AllAllowedCards(seq, ahand[1])
	is.Equal(f.FilterAllowedCards(seq, &ahand, allowed),
		allowed.Remove(card.SO).Remove(card.E8))

	// Once GO is gone, EO and HO become neighbours.
	for _, c := range card.MustParseCards("GO E9 EK G7") {
		seq.Zugeben(c, r)
	}
	f.RegisterStich(seq, &ahand)
	hand := card.MustParseHand("EO HO")
	is.Equal(f.FilterAllowedCards(seq, &ahand, hand.Set()), card.SetOf(card.EO))
	f.UnregisterStich(seq, &ahand)
	is.Equal(f.FilterAllowedCards(seq, &ahand, hand.Set()), hand.Set())
}

func TestSnapshotTable(t *testing.T) {
	is := is.New(t)
	table := NewSnapshotTable(0, 1)
	is.Equal(table.sizePowerOf2, minSizePowerOf2)
	e := tableEntry{flag: TTLower, scalar: 42}
	table.store(12345, e)
	got, ok := table.lookup(12345)
	is.True(ok)
	is.Equal(got.scalar, int32(42))
	is.Equal(got.flag, uint8(TTLower))

	_, ok = table.lookup(54321)
	is.True(!ok)

	table.NextGeneration()
	_, ok = table.lookup(12345)
	is.True(!ok)
	is.Equal(table.Stats().Hits, uint64(1))
	is.Equal(table.Stats().Lookups, uint64(3))
}

func TestParseStrategy(t *testing.T) {
	is := is.New(t)
	for _, st := range AllStrategies {
		parsed, err := ParseStrategy(st.String())
		is.NoErr(err)
		is.Equal(parsed, st)
	}
	_, err := ParseStrategy("greedy")
	is.True(err != nil)
	is.Equal(SelfishStrategySet.String(), "selfish-min,selfish-max")
	is.True(!SelfishStrategySet.Contains(Min))
}

// bruteForce searches g without any pruning. choose reports whether epi
// prefers cand over cur, both payouts of self.
func bruteForce(g Game, self card.PlayerIndex, choose func(epi card.PlayerIndex, cand, cur int) bool) int {
	seq := g.Seq.Clone()
	ahand := g.AHand
	cache := statecache.New(seq, ahand)
	var rec func() int
	rec = func() int {
		if seq.IsFinished() {
			return g.Rules.Payout(seq, rules.Expensifiers{}, cache)[self]
		}
		epi := seq.CurrentPlayer()
		var best int
		first := true
		for c := range g.Rules.AllAllowedCards(seq, ahand[epi]).All() {
			var v int
			ahand[epi].PlayCard(c)
			seq.Zugeben(c, g.Rules)
			if seq.CurrentStich().IsEmpty() {
				last, _ := seq.LastCompleted()
				winner := seq.CurrentPlayer()
				cache.RegisterStich(last, winner)
				v = rec()
				cache.UnregisterStich(last, winner)
			} else {
				v = rec()
			}
			seq.Undo()
			ahand[epi].AddCard(c)
			if first || choose(epi, v, best) {
				best = v
			}
			first = false
		}
		return best
	}
	return rec()
}

// forEachLeaf calls f at the end of every way to play g out.
func forEachLeaf(g Game, f func(seq *stich.Sequence, cache *statecache.Cache)) {
	seq := g.Seq.Clone()
	ahand := g.AHand
	cache := statecache.New(seq, ahand)
	var rec func()
	rec = func() {
		if seq.IsFinished() {
			f(seq, cache)
			return
		}
		epi := seq.CurrentPlayer()
		for c := range g.Rules.AllAllowedCards(seq, ahand[epi]).All() {
			ahand[epi].PlayCard(c)
			seq.Zugeben(c, g.Rules)
			if seq.CurrentStich().IsEmpty() {
				last, _ := seq.LastCompleted()
				winner := seq.CurrentPlayer()
				cache.RegisterStich(last, winner)
				rec()
				cache.UnregisterStich(last, winner)
			} else {
				rec()
			}
			seq.Undo()
			ahand[epi].AddCard(c)
		}
	}
	rec()
}

func afterCard(g Game, c card.Card) Game {
	seq := g.Seq.Clone()
	ahand := g.AHand
	ahand[seq.CurrentPlayer()].PlayCard(c)
	seq.Zugeben(c, g.Rules)
	return Game{Rules: g.Rules, Seq: seq, AHand: ahand}
}

func TestMinIsPessimisticForEveryone(t *testing.T) {
	is := is.New(t)
	lower := func(_ card.PlayerIndex, cand, cur int) bool { return cand < cur }
	higher := func(_ card.PlayerIndex, cand, cur int) bool { return cand > cur }
	differs := false
	for _, r := range []*rules.Rules{
		testcommon.MustRules(rules.NewRufspiel(0, card.Schelln, testcommon.RufspielPayout, rules.StockHalf)),
		testcommon.HerzSolo(),
	} {
		for _, played := range []int{18, 20} {
			g := playLowest(r, testDeal, played)
			self := g.Seq.CurrentPlayer()
			// self plays for itself, everybody else against it
			adversarial := func(epi card.PlayerIndex, cand, cur int) bool {
				if epi == self {
					return cand > cur
				}
				return cand < cur
			}
			results, _ := EvaluateCards(g, self, Config{})
			for _, res := range results {
				next := afterCard(g, res.Card)
				is.Equal(res.Payout[Min], bruteForce(next, self, lower))
				is.Equal(res.Payout[Max], bruteForce(next, self, higher))
				if res.Payout[Min] != bruteForce(next, self, adversarial) {
					differs = true
				}
			}
		}
	}
	// self giving away its own game must show up somewhere
	is.True(differs)
}

func TestPointsAsPayoutAtEveryLeaf(t *testing.T) {
	is := is.New(t)
	for _, r := range []*rules.Rules{
		testcommon.MustRules(rules.NewRufspiel(0, card.Schelln, testcommon.RufspielPayout, rules.StockHalf)),
		testcommon.HerzSolo(),
		testcommon.MustRules(rules.NewSolo(2, rules.Wenz, 0, rules.PointBased, testcommon.SoloPayout)),
	} {
		pc := newPointsCheck(r)
		is.True(pc != nil)
		g := playLowest(r, testDeal, 20)
		leaves := 0
		forEachLeaf(g, func(seq *stich.Sequence, cache *statecache.Cache) {
			payout := r.Payout(seq, rules.Expensifiers{}, cache)
			is.NoErr(pc.verify(seq, cache, payout))
			for epi := range payout {
				payout[epi] = -payout[epi]
			}
			is.True(pc.verify(seq, cache, payout) != nil)
			leaves++
		})
		is.True(leaves > 1)

		self := g.Seq.CurrentPlayer()
		plain, _ := EvaluateCards(g, self, Config{})
		checked, _ := EvaluateCards(g, self, Config{CheckPoints: true})
		is.Equal(checked, plain)
		checked, _ = EvaluateCards(g, self, Config{CheckPoints: true, AlphaBeta: true})
		for i := range checked {
			is.Equal(checked[i].Payout[SelfishMin], plain[i].Payout[SelfishMin])
		}
	}
	// Only point-based contracts have the variant.
	is.True(newPointsCheck(testcommon.MustRules(rules.NewBettel(3, false, 30))) == nil)
}
