package rules

import (
	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/statecache"
	"github.com/domino14/schafkopf/stich"
)

// StossAllowed reports whether epi, holding hand, may give the next stoss.
// Stosse are only possible before the first card, up to the contract's
// maximum, and alternate between the parties starting with the side that
// did not announce.
func (r *Rules) StossAllowed(seq *stich.Sequence, hand card.Hand, epi card.PlayerIndex, stosse []Stoss) bool {
	if seq.CountPlayedCards() > 0 || len(stosse) >= r.stossMax {
		return false
	}
	primary, ok := r.knowsOwnParty(hand, epi)
	if !ok {
		return false
	}
	return primary == (len(stosse)%2 == 1)
}

// knowsOwnParty tells a player from their own hand whether they are on the
// primary side.
func (r *Rules) knowsOwnParty(hand card.Hand, epi card.PlayerIndex) (bool, bool) {
	switch r.kind {
	case KindRufspiel:
		return epi == r.rufspiel.Caller || hand.Contains(r.rufspiel.Rufsau()), true
	case KindSolo:
		return epi == r.solo.Declarer, true
	case KindBettel:
		return epi == r.bettel.Declarer, true
	}
	return false, false
}

// LoHi marks whether a player maximizes or minimizes the value searched by
// alpha-beta.
type LoHi uint8

const (
	Lo LoHi = iota
	Hi
)

func (lh LoHi) String() string {
	if lh == Hi {
		return "hi"
	}
	return "lo"
}

// AlphaBetaLoHi labels every player Hi if they play together with self and
// Lo otherwise. Contracts without parties cannot be searched with alpha-beta.
func (r *Rules) AlphaBetaLoHi(fixed *statecache.Fixed, self card.PlayerIndex) ([card.NumPlayers]LoHi, bool) {
	var ret [card.NumPlayers]LoHi
	parties, ok := r.PlayerParties(fixed)
	if !ok {
		return ret, false
	}
	for epi := range ret {
		if parties.SameParty(self, card.PlayerIndex(epi)) {
			ret[epi] = Hi
		}
	}
	return ret, true
}
