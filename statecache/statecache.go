// Package statecache keeps an incrementally maintained view of a partially
// played round: who owns each card, and how many stichs and points each
// player has taken so far.
package statecache

import (
	"fmt"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/stich"
)

// Fixed maps every card to the player who holds or played it. It does not
// change while a round is searched.
type Fixed struct {
	owner [card.NumCards]card.PlayerIndex
}

func NewFixed(ahand card.AHand, seq *stich.Sequence) Fixed {
	var f Fixed
	for i := range f.owner {
		f.owner[i] = card.NoPlayer
	}
	for epi, h := range ahand {
		for c := range h.Set().All() {
			f.owner[c] = card.PlayerIndex(epi)
		}
	}
	for st := range seq.VisibleStichs() {
		for epi, c := range st.All() {
			if f.owner[c] != card.NoPlayer {
				panic(fmt.Sprintf("card %v both in hand and played", c))
			}
			f.owner[c] = epi
		}
	}
	return f
}

// Owner returns who was dealt c, or card.NoPlayer for cards outside the deck.
func (f *Fixed) Owner(c card.Card) card.PlayerIndex {
	return f.owner[c]
}

// Dealt returns all cards originally dealt to epi.
func (f *Fixed) Dealt(epi card.PlayerIndex) card.Set {
	var s card.Set
	for c, o := range f.owner {
		if o == epi {
			s = s.Add(card.Card(c))
		}
	}
	return s
}

type PointStichCount struct {
	Stichs int
	Points int
}

// Changing accumulates stichs and points per player over completed stichs.
type Changing struct {
	Players [card.NumPlayers]PointStichCount
}

func (ch *Changing) register(s *stich.Stich, winner card.PlayerIndex) {
	ch.Players[winner].Stichs++
	ch.Players[winner].Points += s.Points()
}

func (ch *Changing) unregister(s *stich.Stich, winner card.PlayerIndex) {
	ch.Players[winner].Stichs--
	ch.Players[winner].Points -= s.Points()
	if ch.Players[winner].Stichs < 0 || ch.Players[winner].Points < 0 {
		panic(fmt.Sprintf("unregister of unknown stich %v", s))
	}
}

// TotalStichs is the number of completed stichs registered.
func (ch *Changing) TotalStichs() int {
	n := 0
	for _, p := range ch.Players {
		n += p.Stichs
	}
	return n
}

// NaiveChanging recomputes the changing part from scratch. The winner of a
// completed stich is the first player of the stich following it.
func NaiveChanging(seq *stich.Sequence) Changing {
	var ch Changing
	completed := seq.CompletedStichs()
	for i := range completed {
		winner := seq.CurrentStich().First()
		if i+1 < len(completed) {
			winner = completed[i+1].First()
		}
		ch.register(&completed[i], winner)
	}
	return ch
}

type Cache struct {
	Fixed    Fixed
	Changing Changing
}

func New(seq *stich.Sequence, ahand card.AHand) *Cache {
	return &Cache{
		Fixed:    NewFixed(ahand, seq),
		Changing: NaiveChanging(seq),
	}
}

func (c *Cache) RegisterStich(s *stich.Stich, winner card.PlayerIndex) {
	c.Changing.register(s, winner)
}

func (c *Cache) UnregisterStich(s *stich.Stich, winner card.PlayerIndex) {
	c.Changing.unregister(s, winner)
}

func (c *Cache) Points(epi card.PlayerIndex) int {
	return c.Changing.Players[epi].Points
}

func (c *Cache) Stichs(epi card.PlayerIndex) int {
	return c.Changing.Players[epi].Stichs
}
