// Package montecarlo answers questions about a round whose hidden cards are
// unknown: it deals the unseen cards many times, searches every deal to the
// end and aggregates the payouts.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/handiter"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stats"
	"github.com/domino14/schafkopf/stich"
	"github.com/domino14/schafkopf/zobrist"
)

var ErrInvalidState = handiter.ErrInvalidState

// LogIteration is one searched deal in the log stream.
type LogIteration struct {
	Iteration int       `json:"iteration" yaml:"iteration"`
	Thread    int       `json:"thread" yaml:"thread"`
	Deal      string    `json:"deal" yaml:"deal"`
	Cards     []LogCard `json:"cards" yaml:"cards"`
}

type LogCard struct {
	Card    string         `json:"card" yaml:"card"`
	Payouts map[string]int `json:"payouts" yaml:"payouts,flow"`
}

// CardStats collects the payouts of self after playing Card.
type CardStats struct {
	Card   card.Card
	Payout gametree.PerStrategy[*stats.PayoutStats]
	// ignore is set once the stopping condition counts the card out.
	ignore bool
}

func newCardStats(c card.Card) *CardStats {
	cs := &CardStats{Card: c}
	for _, st := range gametree.AllStrategies {
		cs.Payout[st] = stats.NewPayoutStats()
	}
	return cs
}

func (cs *CardStats) Ignored() bool {
	return cs.ignore
}

// SuggestParams describes a position from the view of the player to move.
type SuggestParams struct {
	Rules        *rules.Rules
	Seq          *stich.Sequence
	Hand         card.Hand
	Expensifiers rules.Expensifiers
	// Strategy ranks the cards. If the search cannot compute it, the cards
	// are ranked by SelfishMin.
	Strategy       gametree.Strategy
	Mode           handiter.Mode
	DepthThreshold int
	// Samples bounds the number of sampled deals.
	Samples           int
	StoppingCondition StoppingCondition
	// Deal, if set, is the actual distribution of the cards and is the
	// only deal searched.
	Deal      *card.AHand
	LogStream io.Writer

	SearchOptions
}

// Suggestion is the outcome of SuggestCard, best card first.
type Suggestion struct {
	Cards    []*CardStats
	Strategy gametree.Strategy
	Active   gametree.StrategySet
	Deals    int
}

// Best returns the recommended card.
func (s *Suggestion) Best() card.Card {
	return s.Cards[0].Card
}

func (s *Suggestion) Find(c card.Card) (*CardStats, bool) {
	for _, cs := range s.Cards {
		if cs.Card == c {
			return cs, true
		}
	}
	return nil, false
}

// better orders payout stats for st. Min looks at the worst case first,
// Max at the best case, the selfish strategies at the average.
func better(st gametree.Strategy, a, b *stats.PayoutStats) bool {
	switch st {
	case gametree.Min:
		if a.Min() != b.Min() {
			return a.Min() > b.Min()
		}
	case gametree.Max:
		if a.Max() != b.Max() {
			return a.Max() > b.Max()
		}
	}
	if a.Avg() != b.Avg() {
		return a.Avg() > b.Avg()
	}
	return a.Min() > b.Min()
}

// SuggestCard searches every allowed card of the player to move over the
// deals consistent with what that player knows.
func SuggestCard(ctx context.Context, p SuggestParams) (*Suggestion, error) {
	logger := zerolog.Ctx(ctx)
	if p.Rules == nil || p.Seq == nil {
		return nil, fmt.Errorf("%w: rules and stich sequence are required", ErrInvalidState)
	}
	if p.Seq.IsFinished() {
		return nil, fmt.Errorf("%w: round is over", ErrInvalidState)
	}
	self := p.Seq.CurrentPlayer()
	pos := handiter.Position{Rules: p.Rules, Seq: p.Seq, Self: self, Hand: p.Hand, Stosse: p.Expensifiers.Stosse}
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	var deals iter.Seq[card.AHand]
	if p.Deal != nil {
		if p.Deal[self] != p.Hand || !pos.Consistent(*p.Deal) {
			return nil, fmt.Errorf("%w: deal %v does not match the position", ErrInvalidState, *p.Deal)
		}
		deals = handiter.Cheating(*p.Deal)
	} else {
		deals = pos.Deals(p.Mode, p.DepthThreshold, p.Samples, p.rng())
	}

	allowed := p.Rules.AllAllowedCards(p.Seq, p.Hand)
	cards := make([]*CardStats, 0, allowed.Len())
	for c := range allowed.All() {
		cards = append(cards, newCardStats(c))
	}

	cfgs := p.configs()
	for t := range cfgs {
		cfgs[t].Expensifiers = p.Expensifiers
	}
	z := &zobrist.Zobrist{}
	z.Initialize()

	// stopCtx is canceled once the stopping condition holds; ctx only by
	// the caller.
	stopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu     sync.Mutex
		nDeals int
		active = gametree.AllStrategySet
		// searched deals by hash; sampling may draw a deal twice
		seen = make(map[uint64][]gametree.CardResult)
	)
	tstart := time.Now()
	err := runDeals(stopCtx, p.threads(), deals, func(thread int, j job) error {
		key := z.Hash(j.deal, p.Seq.Played())
		mu.Lock()
		results, ok := seen[key]
		mu.Unlock()
		if !ok {
			var act gametree.StrategySet
			g := gametree.Game{Rules: p.Rules, Seq: p.Seq, AHand: j.deal}
			results, act = gametree.EvaluateCards(g, self, cfgs[thread])
			mu.Lock()
			active &= act
			mu.Unlock()
		}

		mu.Lock()
		defer mu.Unlock()
		seen[key] = results
		for i, res := range results {
			for _, st := range gametree.AllStrategies {
				cards[i].Payout[st].Push(res.Payout[st])
			}
		}
		nDeals++
		if p.LogStream != nil {
			if err := writeLog(p.LogStream, thread, j, results, active); err != nil {
				return err
			}
		}
		if nDeals%stopConditionCheckInterval == 0 &&
			shouldStop(cards, rankingStrategy(p.Strategy, active), p.StoppingCondition, nDeals) {
			logger.Info().Int("deals", nDeals).Msg("reached stopping condition")
			cancel()
		}
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	if nDeals == 0 {
		return nil, fmt.Errorf("%w: no deal is consistent with the position", ErrInvalidState)
	}
	logger.Debug().Int("deals", nDeals).Dur("elapsed", time.Since(tstart)).
		Str("active", active.String()).Msg("suggest-card-done")

	st := rankingStrategy(p.Strategy, active)
	if st != p.Strategy {
		logger.Warn().Str("wanted", p.Strategy.String()).Str("using", st.String()).
			Msg("strategy-not-computed")
	}
	slices.SortStableFunc(cards, func(a, b *CardStats) int {
		switch {
		case better(st, a.Payout[st], b.Payout[st]):
			return -1
		case better(st, b.Payout[st], a.Payout[st]):
			return 1
		}
		return 0
	})
	return &Suggestion{Cards: cards, Strategy: st, Active: active, Deals: nDeals}, nil
}

func rankingStrategy(st gametree.Strategy, active gametree.StrategySet) gametree.Strategy {
	if active.Contains(st) {
		return st
	}
	return gametree.SelfishMin
}

func writeLog(w io.Writer, thread int, j job, results []gametree.CardResult, active gametree.StrategySet) error {
	it := LogIteration{Iteration: j.iteration, Thread: thread, Deal: j.deal.String()}
	for _, res := range results {
		lc := LogCard{Card: res.Card.String(), Payouts: make(map[string]int)}
		for _, st := range gametree.AllStrategies {
			if active.Contains(st) {
				lc.Payouts[st.String()] = res.Payout[st]
			}
		}
		it.Cards = append(it.Cards, lc)
	}
	out, err := yaml.Marshal([]LogIteration{it})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (s *Suggestion) String() string {
	var ss strings.Builder
	fmt.Fprintf(&ss, "%-6s", "Card")
	for _, st := range gametree.AllStrategies {
		if s.Active.Contains(st) {
			fmt.Fprintf(&ss, "%-28s", st)
		}
	}
	ss.WriteString("\n")
	for _, cs := range s.Cards {
		fmt.Fprintf(&ss, "%-6s", cs.Card)
		for _, st := range gametree.AllStrategies {
			if s.Active.Contains(st) {
				fmt.Fprintf(&ss, "%-28s", cs.Payout[st])
			}
		}
		if cs.ignore {
			ss.WriteString("❌")
		}
		ss.WriteString("\n")
	}
	fmt.Fprintf(&ss, "Deals: %d, ranked by %v (min/avg/max, ❌ marks cards cut off early)\n", s.Deals, s.Strategy)
	return ss.String()
}
