// Package handiter produces deals of the cards a player cannot see that are
// consistent with everything that happened so far in a round.
package handiter

import (
	"errors"
	"fmt"
	"iter"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/combin"
	"lukechampine.com/frand"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/rules"
	"github.com/domino14/schafkopf/stich"
)

var ErrInvalidState = errors.New("invalid state")

const (
	// uniformTries is how often a plain shuffle is tried before dealing
	// with constraints in mind.
	uniformTries     = 64
	constrainedTries = 1024
)

// Position is what the player Self knows about a round.
type Position struct {
	Rules *rules.Rules
	Seq   *stich.Sequence
	Self  card.PlayerIndex
	Hand  card.Hand
	// Stosse given before the first card, in order.
	Stosse []rules.Stoss
}

// Validate checks that the hand fits the sequence and that Self's own plays
// were legal.
func (p Position) Validate() error {
	if !p.Self.Valid() {
		return fmt.Errorf("%w: player %v", ErrInvalidState, p.Self)
	}
	deck := p.Rules.KurzLang().Set()
	if p.Seq.KurzLang() != p.Rules.KurzLang() {
		return fmt.Errorf("%w: sequence is %v, rules are %v", ErrInvalidState, p.Seq.KurzLang(), p.Rules.KurzLang())
	}
	if !p.Hand.Set().Minus(deck).IsEmpty() {
		return fmt.Errorf("%w: hand %v not in deck", ErrInvalidState, p.Hand)
	}
	if !p.Hand.Set().Intersect(p.Seq.Played()).IsEmpty() {
		return fmt.Errorf("%w: hand %v contains played cards", ErrInvalidState, p.Hand)
	}
	if want := p.Seq.RemainingCardsPerHand()[p.Self]; p.Hand.Len() != want {
		return fmt.Errorf("%w: hand %v has %d cards, expected %d", ErrInvalidState, p.Hand, p.Hand.Len(), want)
	}
	var ahand card.AHand
	ahand[p.Self] = p.Hand
	if !replayLegal(p.Rules, p.Seq, ahand, func(epi card.PlayerIndex) bool { return epi == p.Self }) {
		return fmt.Errorf("%w: %v cannot have played %v with %v", ErrInvalidState, p.Self, p.Seq, p.Hand)
	}
	dealt := dealtHands(p.Seq, ahand)
	if !p.announcedLegally(dealt, func(epi card.PlayerIndex) bool { return epi == p.Self }) {
		return fmt.Errorf("%w: %v cannot have announced or given a stoss with %v", ErrInvalidState, p.Self, dealt[p.Self])
	}
	return nil
}

// Unseen returns the cards held by the other players.
func (p Position) Unseen() card.Set {
	return p.Rules.KurzLang().Set().Minus(p.Seq.Played()).Minus(p.Hand.Set())
}

// Voids returns per player the cards they cannot hold because they did not
// follow a led category.
func (p Position) Voids() [card.NumPlayers]card.Set {
	var ret [card.NumPlayers]card.Set
	deck := p.Rules.KurzLang().Set()
	for st := range p.Seq.VisibleStichs() {
		if st.IsEmpty() {
			continue
		}
		led := p.Rules.TrumpfOrFarbe(st.FirstCard())
		for epi, c := range st.All() {
			if p.Rules.TrumpfOrFarbe(c) == led {
				continue
			}
			for d := range deck.All() {
				if p.Rules.TrumpfOrFarbe(d) == led {
					ret[epi] = ret[epi].Add(d)
				}
			}
		}
	}
	return ret
}

// Consistent reports whether replaying the sequence with the cards of ahand
// added back obeys the rules for every player, and whether the dealt hands
// allow the announced contract and every stoss.
func (p Position) Consistent(ahand card.AHand) bool {
	all := func(card.PlayerIndex) bool { return true }
	return replayLegal(p.Rules, p.Seq, ahand, all) && p.announcedLegally(dealtHands(p.Seq, ahand), all)
}

// dealtHands returns the hands as they were before the first card.
func dealtHands(seq *stich.Sequence, ahand card.AHand) card.AHand {
	for st := range seq.VisibleStichs() {
		for epi, c := range st.All() {
			ahand[epi].AddCard(c)
		}
	}
	return ahand
}

func (p Position) announcedLegally(dealt card.AHand, check func(card.PlayerIndex) bool) bool {
	if epi, ok := p.Rules.Declarer(); ok && check(epi) && !p.Rules.CanBePlayed(dealt[epi]) {
		return false
	}
	start := stich.NewSequence(p.Rules.KurzLang())
	for i, s := range p.Stosse {
		if check(s.Epi) && !p.Rules.StossAllowed(start, dealt[s.Epi], s.Epi, p.Stosse[:i]) {
			return false
		}
	}
	return true
}

func replayLegal(r *rules.Rules, seq *stich.Sequence, ahand card.AHand, check func(card.PlayerIndex) bool) bool {
	hands := dealtHands(seq, ahand)
	replay := stich.NewSequence(seq.KurzLang())
	for _, c := range seq.Cards() {
		epi := replay.CurrentPlayer()
		if check(epi) && !r.AllAllowedCards(replay, hands[epi]).Contains(c) {
			return false
		}
		hands[epi].PlayCard(c)
		replay.Zugeben(c, r)
	}
	return true
}

func (p Position) others() []card.PlayerIndex {
	return lo.Filter(card.AllPlayers[:], func(epi card.PlayerIndex, _ int) bool {
		return epi != p.Self
	})
}

func (p Position) respectsVoids(ahand card.AHand, voids [card.NumPlayers]card.Set) bool {
	for _, epi := range p.others() {
		if !ahand[epi].Set().Intersect(voids[epi]).IsEmpty() {
			return false
		}
	}
	return true
}

// Enumerate yields every consistent deal exactly once.
func (p Position) Enumerate() iter.Seq[card.AHand] {
	return func(yield func(card.AHand) bool) {
		others := p.others()
		counts := p.Seq.RemainingCardsPerHand()
		voids := p.Voids()
		var rec func(ahand card.AHand, rest []card.Card, i int) bool
		rec = func(ahand card.AHand, rest []card.Card, i int) bool {
			epi := others[i]
			if i == len(others)-1 {
				ahand[epi] = card.NewHand(rest...)
				if !p.respectsVoids(ahand, voids) || !p.Consistent(ahand) {
					return true
				}
				return yield(ahand)
			}
			if counts[epi] == 0 {
				ahand[epi] = card.Hand{}
				return rec(ahand, rest, i+1)
			}
			gen := combin.NewCombinationGenerator(len(rest), counts[epi])
			idx := make([]int, counts[epi])
			for gen.Next() {
				gen.Combination(idx)
				var s card.Set
				for _, j := range idx {
					s = s.Add(rest[j])
				}
				if !s.Intersect(voids[epi]).IsEmpty() {
					continue
				}
				ahand[epi] = card.HandFromSet(s)
				remaining := lo.Filter(rest, func(c card.Card, _ int) bool { return !s.Contains(c) })
				if !rec(ahand, remaining, i+1) {
					return false
				}
			}
			return true
		}
		var ahand card.AHand
		ahand[p.Self] = p.Hand
		rec(ahand, p.Unseen().Cards(), 0)
	}
}

// Sample yields n random consistent deals. Deals are drawn uniformly by
// rejection first; when the voids make that hopeless, cards are dealt to
// players that may still hold them, which is no longer uniform.
func (p Position) Sample(rng *frand.RNG, n int) iter.Seq[card.AHand] {
	return func(yield func(card.AHand) bool) {
		voids := p.Voids()
		for i := 0; i < n; i++ {
			ahand, ok := p.sampleOne(rng, voids)
			if !ok {
				log.Warn().Int("sample", i).Str("seq", p.Seq.String()).Msg("no-consistent-deal-found")
				return
			}
			if !yield(ahand) {
				return
			}
		}
	}
}

func (p Position) sampleOne(rng *frand.RNG, voids [card.NumPlayers]card.Set) (card.AHand, bool) {
	unseen := p.Unseen().Cards()
	others := p.others()
	counts := p.Seq.RemainingCardsPerHand()
	var ahand card.AHand
	ahand[p.Self] = p.Hand
	for range uniformTries {
		rng.Shuffle(len(unseen), func(i, j int) { unseen[i], unseen[j] = unseen[j], unseen[i] })
		at := 0
		for _, epi := range others {
			ahand[epi] = card.NewHand(unseen[at : at+counts[epi]]...)
			at += counts[epi]
		}
		if p.respectsVoids(ahand, voids) && p.Consistent(ahand) {
			return ahand, true
		}
	}
	for range constrainedTries {
		if p.dealConstrained(rng, unseen, others, counts, voids, &ahand) && p.Consistent(ahand) {
			return ahand, true
		}
	}
	return ahand, false
}

// dealConstrained hands out cards most constrained first, each to a random
// player who may hold it and has room left.
func (p Position) dealConstrained(rng *frand.RNG, unseen []card.Card, others []card.PlayerIndex,
	counts [card.NumPlayers]int, voids [card.NumPlayers]card.Set, ahand *card.AHand) bool {

	rng.Shuffle(len(unseen), func(i, j int) { unseen[i], unseen[j] = unseen[j], unseen[i] })
	eligible := func(c card.Card) []card.PlayerIndex {
		return lo.Filter(others, func(epi card.PlayerIndex, _ int) bool {
			return !voids[epi].Contains(c) && ahand[epi].Len() < counts[epi]
		})
	}
	for _, epi := range others {
		ahand[epi] = card.Hand{}
	}
	pending := unseen
	for len(pending) > 0 {
		best, bestN := 0, card.NumPlayers+1
		for i, c := range pending {
			if n := len(eligible(c)); n < bestN {
				best, bestN = i, n
			}
		}
		c := pending[best]
		cands := eligible(c)
		if len(cands) == 0 {
			return false
		}
		ahand[cands[rng.Intn(len(cands))]].AddCard(c)
		pending = append(pending[:best:best], pending[best+1:]...)
	}
	return true
}

// Cheating yields the actual deal once.
func Cheating(ahand card.AHand) iter.Seq[card.AHand] {
	return func(yield func(card.AHand) bool) {
		yield(ahand)
	}
}

// Mode selects how hidden hands are generated.
type Mode uint8

const (
	ModeAuto Mode = iota
	ModeEnumerate
	ModeSample
)

func (m Mode) String() string {
	return [...]string{"auto", "enumerate", "sample"}[m]
}

func ParseMode(s string) (Mode, error) {
	for m := ModeAuto; m <= ModeSample; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeAuto, fmt.Errorf("unknown iteration mode %q", s)
}

// Deals picks enumeration or sampling. In auto mode the position is
// enumerated once Self holds at most depthThreshold cards.
func (p Position) Deals(mode Mode, depthThreshold, samples int, rng *frand.RNG) iter.Seq[card.AHand] {
	if mode == ModeAuto {
		mode = ModeSample
		if p.Hand.Len() <= depthThreshold {
			mode = ModeEnumerate
		}
	}
	if mode == ModeEnumerate {
		return p.Enumerate()
	}
	return p.Sample(rng, samples)
}
