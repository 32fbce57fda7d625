package montecarlo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/handiter"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stats"
	"github.com/domino14/schafkopf/testcommon"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestParseBranching(t *testing.T) {
	is := is.New(t)
	for _, tc := range []struct {
		in   string
		want Branching
	}{
		{"", NoBranching},
		{"none", NoBranching},
		{"Oracle", OracleBranching},
		{"equiv7", EquivBranching(7)},
	} {
		b, err := ParseBranching(tc.in)
		is.NoErr(err)
		is.Equal(b, tc.want)
	}
	is.Equal(EquivBranching(5).String(), "equiv5")
	is.True(NoBranching.Factory() == nil)
	is.True(OracleBranching.Factory() != nil)

	for _, bad := range []string{"equiv", "equiv-1", "random"} {
		_, err := ParseBranching(bad)
		is.True(err != nil)
	}
}

func lateHerzSolo(n int) (*rules.Rules, SuggestParams, card.AHand) {
	r := testcommon.HerzSolo()
	seq, actual := testcommon.PlayLowest(r, testcommon.Deal, n)
	self := seq.CurrentPlayer()
	return r, SuggestParams{Rules: r, Seq: seq, Hand: actual[self], Strategy: gametree.SelfishMin}, actual
}

func TestSuggestCheating(t *testing.T) {
	is := is.New(t)
	r, p, actual := lateHerzSolo(16)
	p.Deal = &actual
	sugg, err := SuggestCard(context.Background(), p)
	is.NoErr(err)
	is.Equal(sugg.Deals, 1)
	is.Equal(sugg.Active, gametree.AllStrategySet)

	self := p.Seq.CurrentPlayer()
	results, _ := gametree.EvaluateCards(gametree.Game{Rules: r, Seq: p.Seq, AHand: actual}, self, gametree.Config{})
	is.Equal(len(sugg.Cards), len(results))
	best := results[0].Payout[gametree.SelfishMin]
	for _, res := range results {
		cs, ok := sugg.Find(res.Card)
		is.True(ok)
		for _, st := range gametree.AllStrategies {
			is.Equal(cs.Payout[st].Count(), 1)
			is.Equal(cs.Payout[st].Min(), res.Payout[st])
		}
		best = max(best, res.Payout[gametree.SelfishMin])
	}
	is.Equal(sugg.Cards[0].Payout[gametree.SelfishMin].Min(), best)
}

func TestSuggestEnumerateThreads(t *testing.T) {
	is := is.New(t)
	_, p, _ := lateHerzSolo(24)
	p.Mode = handiter.ModeEnumerate
	pos := handiter.Position{Rules: p.Rules, Seq: p.Seq, Self: p.Seq.CurrentPlayer(), Hand: p.Hand}
	deals := 0
	for range pos.Enumerate() {
		deals++
	}
	is.True(deals > 1)

	single, err := SuggestCard(context.Background(), p)
	is.NoErr(err)
	is.Equal(single.Deals, deals)

	p.SearchOptions = SearchOptions{Branching: EquivBranching(8), Snapshot: true, Threads: 3, TableMemoryFraction: 0.001}
	multi, err := SuggestCard(context.Background(), p)
	is.NoErr(err)
	is.Equal(multi.Deals, deals)
	is.Equal(len(multi.Cards), len(single.Cards))
	for i, cs := range multi.Cards {
		want := single.Cards[i]
		is.Equal(cs.Card, want.Card)
		for _, st := range gametree.AllStrategies {
			is.Equal(cs.Payout[st].Count(), deals)
			is.Equal(cs.Payout[st].Min(), want.Payout[st].Min())
			is.Equal(cs.Payout[st].Max(), want.Payout[st].Max())
			is.Equal(cs.Payout[st].Avg(), want.Payout[st].Avg())
		}
	}
}

func TestSuggestInvalid(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	_, p, _ := lateHerzSolo(24)
	p.Hand = card.NewHand(p.Hand.Set().Cards()[0])
	_, err := SuggestCard(ctx, p)
	is.True(errors.Is(err, ErrInvalidState))

	_, p, actual := lateHerzSolo(24)
	self := p.Seq.CurrentPlayer()
	other := (self + 1) % card.NumPlayers
	actual[self], actual[other] = actual[other], actual[self]
	p.Deal = &actual
	_, err = SuggestCard(ctx, p)
	is.True(errors.Is(err, ErrInvalidState))

	_, p, _ = lateHerzSolo(32)
	_, err = SuggestCard(ctx, p)
	is.True(errors.Is(err, ErrInvalidState))

	_, err = SuggestCard(ctx, SuggestParams{})
	is.True(errors.Is(err, ErrInvalidState))
}

func TestSuggestCanceled(t *testing.T) {
	is := is.New(t)
	_, p, _ := lateHerzSolo(24)
	p.Mode = handiter.ModeEnumerate
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SuggestCard(ctx, p)
	is.True(errors.Is(err, context.Canceled))
}

// cancelOnWrite cancels the search once the first deal is logged.
type cancelOnWrite struct {
	cancel context.CancelFunc
}

func (w cancelOnWrite) Write(p []byte) (int, error) {
	w.cancel()
	return len(p), nil
}

func TestSuggestCanceledMidway(t *testing.T) {
	is := is.New(t)
	_, p, _ := lateHerzSolo(16)
	p.Mode = handiter.ModeSample
	p.Samples = 200
	p.SearchOptions = SearchOptions{Seed: []byte("cancel")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.LogStream = cancelOnWrite{cancel}
	sugg, err := SuggestCard(ctx, p)
	is.True(errors.Is(err, context.Canceled))
	is.True(sugg == nil)
}

func TestSuggestStopsEarly(t *testing.T) {
	is := is.New(t)
	_, p, _ := lateHerzSolo(16)
	p.Mode = handiter.ModeSample
	p.Samples = 300
	p.StoppingCondition = Stop95
	p.SearchOptions = SearchOptions{Seed: []byte("stop"), Branching: OracleBranching}
	sugg, err := SuggestCard(context.Background(), p)
	is.NoErr(err)
	is.True(sugg.Deals > 0)
	is.True(sugg.Deals <= 300)
}

func TestSuggestLogStream(t *testing.T) {
	is := is.New(t)
	_, p, actual := lateHerzSolo(16)
	p.Deal = &actual
	var buf bytes.Buffer
	p.LogStream = &buf
	sugg, err := SuggestCard(context.Background(), p)
	is.NoErr(err)

	var its []LogIteration
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &its))
	is.Equal(len(its), 1)
	is.Equal(its[0].Iteration, 0)
	is.Equal(its[0].Deal, actual.String())
	is.Equal(len(its[0].Cards), len(sugg.Cards))
	for _, lc := range its[0].Cards {
		is.Equal(len(lc.Payouts), gametree.NumStrategies)
	}
}

func TestRankSie(t *testing.T) {
	is := is.New(t)
	r := testcommon.MustRules(rules.NewSolo(0, rules.Farbsolo, card.Herz, rules.Sie, testcommon.SoloPayout))
	ranking, err := RankRules(context.Background(), RankParams{
		Rules:   r,
		Epi:     0,
		Hand:    card.MustParseHand("EO GO HO SO EU GU HU SU"),
		Samples: 5,
		SearchOptions: SearchOptions{
			AlphaBeta: true,
			Seed:      []byte("sie"),
		},
	})
	is.NoErr(err)
	is.Equal(ranking.Deals, 5)
	is.Equal(ranking.Active, gametree.SelfishStrategySet)
	is.Equal(ranking.Occurrence, 0.01)
	// Base and eight laufende, quadrupled, from each of three players.
	payout := ranking.Payout[gametree.SelfishMin]
	is.Equal(payout.Min(), 1560)
	is.Equal(payout.Max(), 1560)
	is.Equal(payout.Count(), 5)
}

func TestRankUnplayable(t *testing.T) {
	is := is.New(t)
	r := testcommon.MustRules(rules.NewRufspiel(0, card.Schelln, testcommon.RufspielPayout, rules.StockHalf))
	_, err := RankRules(context.Background(), RankParams{
		Rules:   r,
		Epi:     0,
		Hand:    card.MustParseHand("SA EO GO HO SO EU GU HU"),
		Samples: 1,
	})
	is.True(errors.Is(err, ErrInvalidState))
}

func TestCompareRankings(t *testing.T) {
	is := is.New(t)
	ranking := func(occurrence float64, payouts ...int) *Ranking {
		r := &Ranking{Occurrence: occurrence}
		for _, st := range gametree.AllStrategies {
			r.Payout[st] = stats.NewPayoutStats()
		}
		for _, p := range payouts {
			r.Payout[gametree.SelfishMin].Push(p)
		}
		return r
	}
	solo := ranking(0.2, 50, 70)
	rufspiel := ranking(0.6, 60, 60)
	wenz := ranking(0.1, 100, -20)
	is.Equal(CompareRankings(rufspiel, solo), -1) // same average, more common
	is.Equal(CompareRankings(solo, rufspiel), 1)
	is.Equal(CompareRankings(wenz, rufspiel), 1)
	is.Equal(CompareRankings(ranking(0.6, 80), wenz), -1)
	is.Equal(CompareRankings(solo, solo), 0)
}
