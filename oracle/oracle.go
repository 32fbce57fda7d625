// Package oracle prunes the cards searched within a stich down to the
// completions of the stich that can lead to different results, assuming
// every player plays for their party.
package oracle

import (
	"bytes"
	"slices"

	"github.com/cespare/xxhash"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/partition"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
	"github.com/domino14/schafkopf/trumpf"
)

// Filter implements gametree.Filter with a StichTrie per stich.
type Filter struct {
	rules     *rules.Rules
	parties   rules.PlayerParties
	chains    [][]card.Card
	partition *partition.Partition
	undo      [][]partition.Removed
	// one trie per completed stich count
	slots []slot

	built int
}

type slot struct {
	valid     bool
	completed card.Set
	first     card.PlayerIndex
	prefix    []card.Card
	trie      *StichTrie
}

// New is a gametree.FilterFactory. Contracts without parties get the
// equivalence filter instead.
func New(r *rules.Rules, seq *stich.Sequence, ahand card.AHand) gametree.Filter {
	fixed := statecache.NewFixed(ahand, seq)
	p, parties, ok := r.OnlyMinMaxPointsWhenOnSameHand(&fixed)
	if !ok {
		return gametree.Equivalence(r.KurzLang().CardsPerPlayer())(r, seq, ahand)
	}
	f := &Filter{
		rules:     r,
		parties:   parties,
		chains:    p.Chains(),
		partition: p,
		slots:     make([]slot, r.KurzLang().CardsPerPlayer()),
	}
	for c := range seq.PlayedInCompleted().All() {
		p.RemoveFromChain(c)
	}
	return f
}

// Strategies reports the selfish strategies: the pruning relies on players
// preferring their own party's payout.
func (f *Filter) Strategies() gametree.StrategySet {
	return gametree.SelfishStrategySet
}

// Built counts the tries constructed so far.
func (f *Filter) Built() int {
	return f.built
}

func (f *Filter) FilterAllowedCards(seq *stich.Sequence, ahand *card.AHand, allowed card.Set) card.Set {
	sl := &f.slots[seq.CompletedCount()]
	node, ok := sl.node(seq)
	if !ok {
		*sl = f.build(seq, *ahand)
		node = sl.trie
	}
	if ret := node.Cards().Intersect(allowed); !ret.IsEmpty() {
		return ret
	}
	return allowed
}

func (f *Filter) RegisterStich(seq *stich.Sequence, _ *card.AHand) {
	last, _ := seq.LastCompleted()
	removed := make([]partition.Removed, 0, card.NumPlayers)
	for _, c := range last.Cards() {
		removed = append(removed, f.partition.RemoveFromChain(c))
	}
	f.undo = append(f.undo, removed)
}

func (f *Filter) UnregisterStich(*stich.Sequence, *card.AHand) {
	removed := f.undo[len(f.undo)-1]
	f.undo = f.undo[:len(f.undo)-1]
	for i := len(removed) - 1; i >= 0; i-- {
		f.partition.Readd(removed[i])
	}
}

// ContinueWithFilter is false in the last stich, where nobody has a choice.
func (f *Filter) ContinueWithFilter(seq *stich.Sequence) bool {
	return seq.CompletedCount() < f.rules.KurzLang().CardsPerPlayer()-1
}

// node finds the trie node of the current position if sl was built for an
// earlier position of the same stich.
func (sl *slot) node(seq *stich.Sequence) (*StichTrie, bool) {
	cur := seq.CurrentStich()
	if !sl.valid || sl.completed != seq.PlayedInCompleted() || sl.first != cur.First() {
		return nil, false
	}
	cards := cur.Cards()
	if len(cards) < len(sl.prefix) || !slices.Equal(cards[:len(sl.prefix)], sl.prefix) {
		return nil, false
	}
	node := sl.trie
	for _, c := range cards[len(sl.prefix):] {
		var ok bool
		if node, ok = node.Child(c); !ok {
			return nil, false
		}
	}
	return node, !node.IsLeaf()
}

func (f *Filter) build(seq *stich.Sequence, ahand card.AHand) slot {
	f.built++
	b := builder{
		rules:     f.rules,
		parties:   f.parties,
		partition: f.partition,
		seq:       seq.Clone(),
		ahand:     ahand,
	}
	trie, _ := b.build()
	prefix := seq.CurrentStich().Cards()
	return slot{
		valid:     true,
		completed: seq.PlayedInCompleted(),
		first:     seq.CurrentStich().First(),
		prefix:    prefix,
		trie:      f.fuse(seq, ahand, prefix, trie),
	}
}

const (
	primaryWins uint8 = 1 << iota
	secondaryWins
)

type builder struct {
	rules     *rules.Rules
	parties   rules.PlayerParties
	partition *partition.Partition
	seq       *stich.Sequence
	ahand     card.AHand
}

func (b *builder) partyBit(epi card.PlayerIndex) uint8 {
	if b.parties.IsPrimary(epi) {
		return primaryWins
	}
	return secondaryWins
}

// build enumerates the rest of the stich, searching one card per run of
// allowed cards that are neighbours in the partition. Which card of the run
// ends up in the trie depends on who can win the stich afterwards.
func (b *builder) build() (*StichTrie, uint8) {
	epi := b.seq.CurrentPlayer()
	allowed := b.rules.AllAllowedCards(b.seq, b.ahand[epi])
	trie := &StichTrie{}
	var wins uint8
	var done card.Set
	for c := range allowed.All() {
		if done.Contains(c) {
			continue
		}
		run := b.partition.Run(c, allowed)
		done = done.Union(card.SetOf(run...))
		sub, subWins := b.play(run[0])
		wins |= subWins
		switch {
		case subWins == b.partyBit(epi):
			trie.Insert(richest(run), sub)
		case subWins&b.partyBit(epi) == 0:
			trie.Insert(poorest(run), sub)
		default:
			for _, rc := range distinctPoints(run) {
				trie.Insert(rc, sub)
			}
		}
	}
	return trie, wins
}

func (b *builder) play(c card.Card) (*StichTrie, uint8) {
	epi := b.seq.CurrentPlayer()
	b.ahand[epi].PlayCard(c)
	b.seq.Zugeben(c, b.rules)
	defer func() {
		b.seq.Undo()
		b.ahand[epi].AddCard(c)
	}()
	if b.seq.CurrentStich().IsEmpty() {
		return &StichTrie{}, b.partyBit(b.seq.CurrentPlayer())
	}
	return b.build()
}

func richest(run []card.Card) card.Card {
	best := run[0]
	for _, c := range run[1:] {
		if c.Points() > best.Points() {
			best = c
		}
	}
	return best
}

func poorest(run []card.Card) card.Card {
	best := run[0]
	for _, c := range run[1:] {
		if c.Points() < best.Points() {
			best = c
		}
	}
	return best
}

func distinctPoints(run []card.Card) []card.Card {
	var ret []card.Card
	for _, c := range run {
		if !slices.ContainsFunc(ret, func(o card.Card) bool { return o.Points() == c.Points() }) {
			ret = append(ret, c)
		}
	}
	return ret
}

type candidate struct {
	path    []card.Card
	profile []byte
	points  int
	// points of the cards left after the stich, in profile order
	rest []int
}

// dominates reports whether a is at least as good as b for the side that
// wants the winner of the stich to get more points (rich) or fewer, however
// the remaining cards are split later. a and b share a profile, so the rest
// of the round is the same game up to the points of the remaining cards.
func dominates(a, b *candidate, rich bool) bool {
	diff := a.points - b.points
	for k, v := range a.rest {
		d := v - b.rest[k]
		if rich {
			diff += min(0, d)
		} else {
			diff += max(0, d)
		}
	}
	if rich {
		return diff >= 0
	}
	return diff <= 0
}

type keepMode uint8

const (
	keepRichest keepMode = iota
	keepPoorest
	keepLastRichest
	keepLastPoorest
)

func (m keepMode) rich() bool {
	return m == keepRichest || m == keepLastRichest
}

// lastOnly modes merge only completions that differ in the last card.
func (m keepMode) lastOnly() bool {
	return m == keepLastRichest || m == keepLastPoorest
}

// fuse merges completions after which the rest of the round looks the same:
// the same player leads and, per category, the remaining cards are held by
// the same players in the same order. Only points can differ between them.
//
// If everybody still to play in the stich is on one side of its winner,
// they all want the same thing and one representative of a group is kept
// (the richest for the winning side, the poorest for the losing side). With
// both sides still to play, dropping a completion could take a reply away
// from an opponent, so only the last player's alternatives are merged, by
// what that player prefers.
func (f *Filter) fuse(seq *stich.Sequence, ahand card.AHand, prefix []card.Card, trie *StichTrie) *StichTrie {
	var owner [card.NumCards]card.PlayerIndex
	for epi, h := range ahand {
		for c := range h.Set().All() {
			owner[c] = card.PlayerIndex(epi)
		}
	}
	var actors []card.PlayerIndex
	for epi := seq.CurrentPlayer(); len(actors) < card.NumPlayers-len(prefix); epi = epi.Next() {
		actors = append(actors, epi)
	}
	last := actors[len(actors)-1]

	first := seq.CurrentStich().First()
	groups := make(map[uint64][]int)
	var kept []*candidate
	for path := range trie.Traverse() {
		st := stich.FromCards(first, append(slices.Clone(prefix), path...)...)
		winner := f.rules.WinnerIndex(&st)
		cand := &candidate{path: path}
		cand.profile, cand.rest = f.profile(seq, &st, winner, &owner)
		for _, c := range path {
			cand.points += c.Points()
		}
		var mode keepMode
		switch n := f.countOnSide(actors, winner); {
		case n == len(actors):
			mode = keepRichest
		case n == 0:
			mode = keepPoorest
		case f.parties.SameParty(last, winner):
			mode = keepLastRichest
		default:
			mode = keepLastPoorest
		}

		h := xxhash.Sum64(cand.profile)
		dropped := false
		for _, i := range groups[h] {
			other := kept[i]
			if !bytes.Equal(other.profile, cand.profile) {
				continue
			}
			if mode.lastOnly() && !slices.Equal(other.path[:len(path)-1], path[:len(path)-1]) {
				continue
			}
			if dominates(other, cand, mode.rich()) {
				dropped = true
				break
			}
			if dominates(cand, other, mode.rich()) {
				kept[i] = cand
				dropped = true
				break
			}
		}
		if !dropped {
			groups[h] = append(groups[h], len(kept))
			kept = append(kept, cand)
		}
	}

	ret := &StichTrie{}
	for _, cand := range kept {
		ret.Merge(FromPath(cand.path...))
	}
	return ret
}

func (f *Filter) countOnSide(actors []card.PlayerIndex, winner card.PlayerIndex) int {
	n := 0
	for _, epi := range actors {
		if f.parties.SameParty(epi, winner) {
			n++
		}
	}
	return n
}

// profile encodes what the rest of the round depends on after st, apart
// from the points of the remaining cards, which are returned separately.
func (f *Filter) profile(seq *stich.Sequence, st *stich.Stich, winner card.PlayerIndex, owner *[card.NumCards]card.PlayerIndex) ([]byte, []int) {
	gone := seq.PlayedInCompleted().Union(st.Set())
	buf := make([]byte, 0, card.NumCards+len(f.chains)+3)
	rest := make([]int, 0, card.NumCards)
	buf = append(buf, byte(winner))
	for _, chain := range f.chains {
		for _, c := range chain {
			if !gone.Contains(c) {
				buf = append(buf, byte(owner[c]))
				rest = append(rest, c.Points())
			}
		}
		buf = append(buf, 0xfe)
	}
	if rs := f.rules.Rufspiel(); rs != nil {
		gesucht := f.rules.Gesucht(seq) || f.rules.TrumpfOrFarbe(st.FirstCard()) == trumpf.Farbe(rs.Farbe)
		buf = append(buf, boolByte(gesucht), boolByte(!gone.Contains(rs.Rufsau())))
	}
	return buf, rest
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
