package rules

import (
	"fmt"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/stich"
	"github.com/domino14/schafkopf/trumpf"
)

// AllAllowedCards returns the cards of hand that may be played next. The
// result is non-empty whenever hand is.
func (r *Rules) AllAllowedCards(seq *stich.Sequence, hand card.Hand) card.Set {
	if seq.CurrentStich().IsEmpty() {
		return r.AllAllowedCardsFirstInStich(seq, hand)
	}
	return r.AllAllowedCardsWithinStich(seq, hand)
}

func (r *Rules) AllAllowedCardsFirstInStich(seq *stich.Sequence, hand card.Hand) card.Set {
	if r.kind == KindRufspiel {
		return r.rufspielFirstInStich(seq, hand)
	}
	return hand.Set()
}

func (r *Rules) AllAllowedCardsWithinStich(seq *stich.Sequence, hand card.Hand) card.Set {
	switch r.kind {
	case KindRufspiel:
		return r.rufspielWithinStich(seq, hand)
	case KindBettel:
		if r.bettel.Stichzwang {
			return r.stichzwangWithinStich(seq, hand)
		}
	}
	return r.followCategory(seq, hand)
}

func (r *Rules) ofCategory(s card.Set, cat trumpf.TrumpfOrFarbe) card.Set {
	var ret card.Set
	for c := range s.All() {
		if r.decider.TrumpfOrFarbe(c) == cat {
			ret = ret.Add(c)
		}
	}
	return ret
}

// followCategory serves the led category if possible, else allows any card.
func (r *Rules) followCategory(seq *stich.Sequence, hand card.Hand) card.Set {
	cat := r.decider.TrumpfOrFarbe(seq.CurrentStich().FirstCard())
	if same := r.ofCategory(hand.Set(), cat); !same.IsEmpty() {
		return same
	}
	return hand.Set()
}

func (r *Rules) stichzwangWithinStich(seq *stich.Sequence, hand card.Hand) card.Set {
	allowed := r.followCategory(seq, hand)
	cur := seq.CurrentStich()
	best := cur.At(r.preliminaryWinnerPos(cur))
	var higher card.Set
	for c := range allowed.All() {
		if cmp, ok := r.decider.CompareCards(c, best); ok && cmp > 0 {
			higher = higher.Add(c)
		}
	}
	if !higher.IsEmpty() {
		return higher
	}
	return allowed
}

func (r *Rules) isRuffarbe(c card.Card) bool {
	return r.decider.TrumpfOrFarbe(c) == trumpf.Farbe(r.rufspiel.Farbe)
}

// gesucht reports whether a completed stich was led with the called suit.
func (r *Rules) gesucht(seq *stich.Sequence) bool {
	for _, st := range seq.CompletedStichs() {
		if r.isRuffarbe(st.FirstCard()) {
			return true
		}
	}
	return false
}

// Gesucht reports whether the called suit of a Rufspiel was led in a
// completed stich. It is false for every other contract.
func (r *Rules) Gesucht(seq *stich.Sequence) bool {
	return r.kind == KindRufspiel && r.gesucht(seq)
}

// davonlaufenMin is how many cards of the called suit the partner needs to
// lead the suit without the Sau.
func (r *Rules) davonlaufenMin() int {
	return r.kurzlang.CardsPerPlayer() / 2
}

func (r *Rules) rufspielFirstInStich(seq *stich.Sequence, hand card.Hand) card.Set {
	rufsau := r.rufspiel.Rufsau()
	if !hand.Contains(rufsau) || r.gesucht(seq) {
		return hand.Set()
	}
	ruf := r.ofCategory(hand.Set(), trumpf.Farbe(r.rufspiel.Farbe))
	if ruf.Len() >= r.davonlaufenMin() {
		return hand.Set()
	}
	// Leading the called suit means leading the Sau.
	return hand.Set().Minus(ruf).Add(rufsau)
}

func (r *Rules) rufspielWithinStich(seq *stich.Sequence, hand card.Hand) card.Set {
	rufsau := r.rufspiel.Rufsau()
	allowed := r.followCategory(seq, hand)
	if !hand.Contains(rufsau) || r.gesucht(seq) {
		return allowed
	}
	if r.isRuffarbe(seq.CurrentStich().FirstCard()) {
		return card.SetOf(rufsau)
	}
	// The Sau must not be thrown away before its suit was led.
	if allowed.Len() > 1 && allowed.Contains(rufsau) {
		return allowed.Remove(rufsau)
	}
	return allowed
}

// CheckPlay validates that epi may play c given their hand.
func (r *Rules) CheckPlay(seq *stich.Sequence, hand card.Hand, epi card.PlayerIndex, c card.Card) error {
	if seq.IsFinished() {
		return fmt.Errorf("%w: round is over", ErrInvalidCardPlay)
	}
	if cur := seq.CurrentPlayer(); cur != epi {
		return fmt.Errorf("%w: player %v to play, not %v", ErrWrongTurn, cur, epi)
	}
	if !hand.Contains(c) {
		return fmt.Errorf("%w: %v not in hand %v", ErrInvalidCardPlay, c, hand)
	}
	if !r.AllAllowedCards(seq, hand).Contains(c) {
		return fmt.Errorf("%w: %v not allowed", ErrInvalidCardPlay, c)
	}
	return nil
}
