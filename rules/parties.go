package rules

import (
	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/statecache"
)

// PlayerParties labels each player primary or secondary and carries the
// per-player multiplier that keeps payouts zero-sum.
type PlayerParties struct {
	primary    [card.NumPlayers]bool
	multiplier [card.NumPlayers]int
}

func soloParties(declarer card.PlayerIndex) PlayerParties {
	var p PlayerParties
	for epi := range card.NumPlayers {
		p.multiplier[epi] = 1
	}
	p.primary[declarer] = true
	p.multiplier[declarer] = card.NumPlayers - 1
	return p
}

func pairParties(a, b card.PlayerIndex) PlayerParties {
	var p PlayerParties
	for epi := range card.NumPlayers {
		p.multiplier[epi] = 1
	}
	p.primary[a] = true
	p.primary[b] = true
	return p
}

func (p PlayerParties) IsPrimary(epi card.PlayerIndex) bool {
	return p.primary[epi]
}

func (p PlayerParties) Multiplier(epi card.PlayerIndex) int {
	return p.multiplier[epi]
}

// SameParty reports whether two players play together.
func (p PlayerParties) SameParty(a, b card.PlayerIndex) bool {
	return p.primary[a] == p.primary[b]
}

// Primaries returns the primary players.
func (p PlayerParties) Primaries() []card.PlayerIndex {
	var ret []card.PlayerIndex
	for epi, prim := range p.primary {
		if prim {
			ret = append(ret, card.PlayerIndex(epi))
		}
	}
	return ret
}

// InternalPayout distributes a payout owed to each primary player (negative
// for a loss) with multipliers and opposite sign for the secondary party.
func (p PlayerParties) InternalPayout(nPrimaryUnmultiplied int) [card.NumPlayers]int {
	var ret [card.NumPlayers]int
	for epi := range card.NumPlayers {
		v := nPrimaryUnmultiplied * p.multiplier[epi]
		if !p.primary[epi] {
			v = -v
		}
		ret[epi] = v
	}
	return ret
}

// PrimaryPointsStichs sums points and stichs of the primary party.
func (p PlayerParties) PrimaryPointsStichs(cache *statecache.Cache) (points, stichs int) {
	for epi, prim := range p.primary {
		if prim {
			points += cache.Changing.Players[epi].Points
			stichs += cache.Changing.Players[epi].Stichs
		}
	}
	return points, stichs
}

// PlayerParties returns the parties of a contract. Ramsch has none.
func (r *Rules) PlayerParties(fixed *statecache.Fixed) (PlayerParties, bool) {
	switch r.kind {
	case KindRufspiel:
		return pairParties(r.rufspiel.Caller, fixed.Owner(r.rufspiel.Rufsau())), true
	case KindSolo:
		return soloParties(r.solo.Declarer), true
	case KindBettel:
		return soloParties(r.bettel.Declarer), true
	}
	return PlayerParties{}, false
}
