package gametree

import (
	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/partition"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stich"
)

// Filter narrows the cards searched at a node. Filters must never drop a
// card whose subtree is strictly better for its player than every kept one.
type Filter interface {
	// FilterAllowedCards returns the subset of allowed to search for the
	// player to move.
	FilterAllowedCards(seq *stich.Sequence, ahand *card.AHand, allowed card.Set) card.Set
	// RegisterStich is called right after a stich was completed;
	// UnregisterStich right before it is taken back.
	RegisterStich(seq *stich.Sequence, ahand *card.AHand)
	UnregisterStich(seq *stich.Sequence, ahand *card.AHand)
	// ContinueWithFilter reports whether the filter should still be used in
	// this position. Once false it stays false deeper in the tree.
	ContinueWithFilter(seq *stich.Sequence) bool
}

// StrategyLimiter is implemented by filters whose pruning is only exact
// under some strategies. Searches using them report only those as active.
type StrategyLimiter interface {
	Strategies() StrategySet
}

// FilterFactory builds a fresh filter for one search.
type FilterFactory func(r *rules.Rules, seq *stich.Sequence, ahand card.AHand) Filter

type identityFilter struct{}

func (identityFilter) FilterAllowedCards(_ *stich.Sequence, _ *card.AHand, allowed card.Set) card.Set {
	return allowed
}
func (identityFilter) RegisterStich(*stich.Sequence, *card.AHand)   {}
func (identityFilter) UnregisterStich(*stich.Sequence, *card.AHand) {}
func (identityFilter) ContinueWithFilter(*stich.Sequence) bool      { return false }

func Identity(*rules.Rules, *stich.Sequence, card.AHand) Filter {
	return identityFilter{}
}

// EquivalenceFilter searches one card per run of cards that are equivalent
// while on the same hand. Cards of completed stichs are taken out of the
// partition, so runs grow as the round goes on.
type EquivalenceFilter struct {
	partition *partition.Partition
	undo      [][]partition.Removed
	// untilStich is the number of completed stichs from which on the filter
	// is no longer used.
	untilStich int
}

// Equivalence returns a factory for filters active in the first n stichs.
func Equivalence(n int) FilterFactory {
	return func(r *rules.Rules, seq *stich.Sequence, _ card.AHand) Filter {
		p := r.EquivalentWhenOnSameHand()
		for c := range seq.PlayedInCompleted().All() {
			p.RemoveFromChain(c)
		}
		return &EquivalenceFilter{partition: p, untilStich: n}
	}
}

func (f *EquivalenceFilter) FilterAllowedCards(_ *stich.Sequence, _ *card.AHand, allowed card.Set) card.Set {
	var ret card.Set
	for c := range allowed.All() {
		if f.partition.PrevWhileContained(c, allowed) == c {
			ret = ret.Add(c)
		}
	}
	return ret
}

func (f *EquivalenceFilter) RegisterStich(seq *stich.Sequence, _ *card.AHand) {
	last, _ := seq.LastCompleted()
	removed := make([]partition.Removed, 0, card.NumPlayers)
	for _, c := range last.Cards() {
		removed = append(removed, f.partition.RemoveFromChain(c))
	}
	f.undo = append(f.undo, removed)
}

func (f *EquivalenceFilter) UnregisterStich(*stich.Sequence, *card.AHand) {
	removed := f.undo[len(f.undo)-1]
	f.undo = f.undo[:len(f.undo)-1]
	for i := len(removed) - 1; i >= 0; i-- {
		f.partition.Readd(removed[i])
	}
}

func (f *EquivalenceFilter) ContinueWithFilter(seq *stich.Sequence) bool {
	return seq.CompletedCount() < f.untilStich
}
