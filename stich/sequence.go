package stich

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/domino14/schafkopf/card"
)

var (
	ErrDuplicateCard = errors.New("duplicate card")
	ErrTooManyCards  = errors.New("too many cards for deck")
	ErrNotInDeck     = errors.New("card not in deck")
)

// Winner decides who takes a full stich. Rules implement it.
type Winner interface {
	WinnerIndex(s *Stich) card.PlayerIndex
}

// Sequence is the list of completed stichs plus the current one. The first
// player of each stich is the winner of the previous one.
type Sequence struct {
	kurzlang  card.KurzLang
	completed []Stich
	current   Stich
	played    card.Set
}

func NewSequence(kl card.KurzLang) *Sequence {
	return &Sequence{
		kurzlang:  kl,
		completed: make([]Stich, 0, kl.CardsPerPlayer()),
		current:   New(0),
	}
}

// NewFromCards replays cards in order. It is the inverse of Cards.
func NewFromCards(kl card.KurzLang, cards []card.Card, w Winner) (*Sequence, error) {
	s := NewSequence(kl)
	if len(cards) > kl.NumCards() {
		return nil, fmt.Errorf("%w: %d cards", ErrTooManyCards, len(cards))
	}
	for _, c := range cards {
		if !kl.Contains(c) {
			return nil, fmt.Errorf("%w: %v", ErrNotInDeck, c)
		}
		if s.played.Contains(c) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateCard, c)
		}
		s.Zugeben(c, w)
	}
	return s, nil
}

func (s *Sequence) KurzLang() card.KurzLang {
	return s.kurzlang
}

// Zugeben plays c for the current player, rolling over to a new stich when
// the current one fills up.
func (s *Sequence) Zugeben(c card.Card, w Winner) {
	if s.IsFinished() {
		panic("zugeben on finished stich sequence")
	}
	if s.played.Contains(c) {
		panic(fmt.Sprintf("card %v played twice", c))
	}
	s.current.Push(c)
	s.played = s.played.Add(c)
	if s.current.IsFull() {
		winner := w.WinnerIndex(&s.current)
		s.completed = append(s.completed, s.current)
		s.current = New(winner)
	}
}

// Undo takes back the most recently played card.
func (s *Sequence) Undo() card.Card {
	if s.current.IsEmpty() {
		if len(s.completed) == 0 {
			panic("undo on empty stich sequence")
		}
		s.current = s.completed[len(s.completed)-1]
		s.completed = s.completed[:len(s.completed)-1]
	}
	c := s.current.Undo()
	s.played = s.played.Remove(c)
	return c
}

func (s *Sequence) CompletedStichs() []Stich {
	return s.completed
}

// LastCompleted returns the most recently completed stich.
func (s *Sequence) LastCompleted() (*Stich, bool) {
	if len(s.completed) == 0 {
		return nil, false
	}
	return &s.completed[len(s.completed)-1], true
}

func (s *Sequence) CurrentStich() *Stich {
	return &s.current
}

func (s *Sequence) CurrentPlayer() card.PlayerIndex {
	return s.current.Current()
}

func (s *Sequence) CompletedCount() int {
	return len(s.completed)
}

func (s *Sequence) CountPlayedCards() int {
	return len(s.completed)*card.NumPlayers + s.current.Size()
}

func (s *Sequence) IsFinished() bool {
	return len(s.completed) == s.kurzlang.CardsPerPlayer()
}

// Played returns every card in completed stichs and the current stich.
func (s *Sequence) Played() card.Set {
	return s.played
}

// PlayedInCompleted returns the cards of completed stichs only.
func (s *Sequence) PlayedInCompleted() card.Set {
	return s.played.Minus(s.current.Set())
}

// RemainingCardsPerHand returns how many cards each player still holds.
func (s *Sequence) RemainingCardsPerHand() [card.NumPlayers]int {
	var ret [card.NumPlayers]int
	left := s.kurzlang.CardsPerPlayer() - len(s.completed)
	for i := range ret {
		ret[i] = left
	}
	for epi := range s.current.All() {
		ret[epi]--
	}
	return ret
}

// VisibleStichs yields the completed stichs followed by the current one if
// it holds any card.
func (s *Sequence) VisibleStichs() iter.Seq[*Stich] {
	return func(yield func(*Stich) bool) {
		for i := range s.completed {
			if !yield(&s.completed[i]) {
				return
			}
		}
		if !s.current.IsEmpty() {
			yield(&s.current)
		}
	}
}

// Cards returns all played cards in play order.
func (s *Sequence) Cards() []card.Card {
	ret := make([]card.Card, 0, s.CountPlayedCards())
	for st := range s.VisibleStichs() {
		ret = append(ret, st.Cards()...)
	}
	return ret
}

func (s *Sequence) Clone() *Sequence {
	c := *s
	c.completed = make([]Stich, len(s.completed), s.kurzlang.CardsPerPlayer())
	copy(c.completed, s.completed)
	return &c
}

func (s *Sequence) String() string {
	parts := make([]string, 0, len(s.completed)+1)
	for st := range s.VisibleStichs() {
		parts = append(parts, "["+st.String()+"]")
	}
	return strings.Join(parts, " ")
}
