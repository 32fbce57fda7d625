package montecarlo

import (
	"cmp"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/handiter"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stats"
	"github.com/domino14/schafkopf/stich"
)

// RankParams describes a contract candidate before the first card.
type RankParams struct {
	Rules        *rules.Rules
	Epi          card.PlayerIndex
	Hand         card.Hand
	Expensifiers rules.Expensifiers
	Samples      int

	SearchOptions
}

// Ranking is the payout of Epi over all sampled deals.
type Ranking struct {
	Payout gametree.PerStrategy[*stats.PayoutStats]
	Active gametree.StrategySet
	Deals  int
	// Occurrence is how often a contract of this kind gets announced at
	// all; zero for Ramsch.
	Occurrence float64
}

// CompareRankings orders the better ranking first: by average selfish-min
// payout, then by the more common kind of contract.
func CompareRankings(a, b *Ranking) int {
	pa, pb := a.Payout[gametree.SelfishMin].Avg(), b.Payout[gametree.SelfishMin].Avg()
	switch {
	case pa > pb:
		return -1
	case pa < pb:
		return 1
	}
	return cmp.Compare(b.Occurrence, a.Occurrence)
}

// RankRules estimates what p.Rules pays p.Epi given their full hand.
func RankRules(ctx context.Context, p RankParams) (*Ranking, error) {
	logger := zerolog.Ctx(ctx)
	if p.Rules == nil {
		return nil, fmt.Errorf("%w: rules are required", ErrInvalidState)
	}
	if declarer, ok := p.Rules.Declarer(); ok && declarer == p.Epi && !p.Rules.CanBePlayed(p.Hand) {
		return nil, fmt.Errorf("%w: %v cannot be played with %v", ErrInvalidState, p.Rules, p.Hand)
	}
	pos := handiter.Position{
		Rules:  p.Rules,
		Seq:    stich.NewSequence(p.Rules.KurzLang()),
		Self:   p.Epi,
		Hand:   p.Hand,
		Stosse: p.Expensifiers.Stosse,
	}
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	cfgs := p.configs()
	for t := range cfgs {
		cfgs[t].Expensifiers = p.Expensifiers
	}
	ret := &Ranking{Active: gametree.AllStrategySet}
	ret.Occurrence, _ = p.Rules.HeuristicActiveOccurrenceProbability()
	for _, st := range gametree.AllStrategies {
		ret.Payout[st] = stats.NewPayoutStats()
	}
	var mu sync.Mutex
	err := runDeals(ctx, p.threads(), pos.Sample(p.rng(), p.Samples), func(thread int, j job) error {
		g := gametree.Game{Rules: p.Rules, Seq: pos.Seq, AHand: j.deal}
		payout, active := gametree.Evaluate(g, p.Epi, cfgs[thread])
		mu.Lock()
		defer mu.Unlock()
		ret.Active &= active
		for _, st := range gametree.AllStrategies {
			ret.Payout[st].Push(payout[st])
		}
		ret.Deals++
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if ret.Deals == 0 {
		return nil, fmt.Errorf("%w: no deal found for %v", ErrInvalidState, p.Hand)
	}
	logger.Debug().Int("deals", ret.Deals).Str("rules", p.Rules.String()).Msg("rank-rules-done")
	return ret, nil
}
