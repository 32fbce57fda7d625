package card

import (
	"fmt"
	"strings"
)

// Hand is the set of cards a player currently holds.
type Hand struct {
	set Set
}

func NewHand(cards ...Card) Hand {
	return Hand{set: SetOf(cards...)}
}

func HandFromSet(s Set) Hand {
	return Hand{set: s}
}

// ParseHand parses a hand like "EO GU HA".
func ParseHand(s string) (Hand, error) {
	cards, err := ParseCards(s)
	if err != nil {
		return Hand{}, err
	}
	h := NewHand(cards...)
	if h.Len() != len(cards) {
		return Hand{}, fmt.Errorf("duplicate card in hand %q", s)
	}
	return h, nil
}

func MustParseHand(s string) Hand {
	h, err := ParseHand(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Hand) Contains(c Card) bool {
	return h.set.Contains(c)
}

// PlayCard removes c from the hand. Playing a card the hand does not hold is
// a programming error.
func (h *Hand) PlayCard(c Card) {
	if !h.set.Contains(c) {
		panic(fmt.Sprintf("card %v not in hand %v", c, h))
	}
	h.set = h.set.Remove(c)
}

func (h *Hand) AddCard(c Card) {
	if h.set.Contains(c) {
		panic(fmt.Sprintf("card %v already in hand %v", c, h))
	}
	h.set = h.set.Add(c)
}

func (h Hand) Len() int {
	return h.set.Len()
}

func (h Hand) IsEmpty() bool {
	return h.set.IsEmpty()
}

func (h Hand) Set() Set {
	return h.set
}

func (h Hand) Cards() []Card {
	return h.set.Cards()
}

func (h Hand) String() string {
	return h.set.String()
}

// AHand holds one hand per player.
type AHand [NumPlayers]Hand

// ParseAHand parses four hands separated by "/".
func ParseAHand(s string) (AHand, error) {
	var ahand AHand
	parts := strings.Split(s, "/")
	if len(parts) != NumPlayers {
		return ahand, fmt.Errorf("expected %d hands, got %d", NumPlayers, len(parts))
	}
	seen := Set(0)
	for i, p := range parts {
		h, err := ParseHand(p)
		if err != nil {
			return ahand, err
		}
		if !seen.Intersect(h.set).IsEmpty() {
			return ahand, fmt.Errorf("card dealt twice in %q", s)
		}
		seen = seen.Union(h.set)
		ahand[i] = h
	}
	return ahand, nil
}

func MustParseAHand(s string) AHand {
	ahand, err := ParseAHand(s)
	if err != nil {
		panic(err)
	}
	return ahand
}

// Set returns the union of all hands.
func (a AHand) Set() Set {
	var s Set
	for _, h := range a {
		s = s.Union(h.set)
	}
	return s
}

func (a AHand) String() string {
	parts := make([]string, NumPlayers)
	for i, h := range a {
		parts[i] = h.String()
	}
	return strings.Join(parts, " / ")
}
