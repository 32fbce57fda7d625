// Package stich models tricks and the sequence of tricks of a round.
package stich

import (
	"fmt"
	"iter"
	"strings"

	"github.com/domino14/schafkopf/card"
)

// Stich is a trick: up to four cards played in seat order from First.
type Stich struct {
	first card.PlayerIndex
	cards [card.NumPlayers]card.Card
	n     int
}

func New(first card.PlayerIndex) Stich {
	return Stich{first: first}
}

// FromCards builds a stich led by first. It panics on more than four cards.
func FromCards(first card.PlayerIndex, cards ...card.Card) Stich {
	s := New(first)
	for _, c := range cards {
		s.Push(c)
	}
	return s
}

func (s *Stich) Push(c card.Card) {
	if s.n == card.NumPlayers {
		panic("push onto full stich")
	}
	s.cards[s.n] = c
	s.n++
}

// Undo removes the most recently played card.
func (s *Stich) Undo() card.Card {
	if s.n == 0 {
		panic("undo on empty stich")
	}
	s.n--
	return s.cards[s.n]
}

func (s *Stich) First() card.PlayerIndex {
	return s.first
}

// FirstCard returns the led card. The stich must not be empty.
func (s *Stich) FirstCard() card.Card {
	if s.n == 0 {
		panic("first card of empty stich")
	}
	return s.cards[0]
}

// Current returns the player to play next.
func (s *Stich) Current() card.PlayerIndex {
	return s.first.Add(s.n)
}

func (s *Stich) Size() int {
	return s.n
}

func (s *Stich) IsEmpty() bool {
	return s.n == 0
}

func (s *Stich) IsFull() bool {
	return s.n == card.NumPlayers
}

// Get returns the card of player epi, if they already played.
func (s *Stich) Get(epi card.PlayerIndex) (card.Card, bool) {
	pos := epi.Distance(s.first)
	if pos >= s.n {
		return 0, false
	}
	return s.cards[pos], true
}

// At returns the card at play position i (0 = led card).
func (s *Stich) At(i int) card.Card {
	if i >= s.n {
		panic(fmt.Sprintf("no card at position %d in %v", i, s))
	}
	return s.cards[i]
}

// All yields (player, card) in play order.
func (s *Stich) All() iter.Seq2[card.PlayerIndex, card.Card] {
	return func(yield func(card.PlayerIndex, card.Card) bool) {
		for i := 0; i < s.n; i++ {
			if !yield(s.first.Add(i), s.cards[i]) {
				return
			}
		}
	}
}

func (s *Stich) Cards() []card.Card {
	return append([]card.Card(nil), s.cards[:s.n]...)
}

func (s *Stich) Set() card.Set {
	return card.SetOf(s.cards[:s.n]...)
}

func (s *Stich) Points() int {
	pts := 0
	for i := 0; i < s.n; i++ {
		pts += s.cards[i].Points()
	}
	return pts
}

func (s Stich) String() string {
	var sb strings.Builder
	for i, epi := range card.PlayersFrom(0) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if epi == s.first {
			sb.WriteByte('>')
		}
		if c, ok := s.Get(epi); ok {
			sb.WriteString(c.String())
		} else {
			sb.WriteString("__")
		}
	}
	return sb.String()
}
