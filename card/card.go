// Package card contains the immutable Schafkopf card universe: suits, ranks,
// cards, players, card sets and hands.
package card

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCard = errors.New("unknown card")

// Farbe is a suit. Eichel is the highest-priority suit.
type Farbe uint8

const (
	Eichel Farbe = iota
	Gras
	Herz
	Schelln
)

const NumFarben = 4

var farbeLetters = "EGHS"
var farbeNames = [NumFarben]string{"Eichel", "Gras", "Herz", "Schelln"}

func (f Farbe) String() string {
	return string(farbeLetters[f])
}

// Name returns the German suit name, e.g. "Eichel".
func (f Farbe) Name() string {
	return farbeNames[f]
}

// AllFarben lists suits in Eichel < Gras < Herz < Schelln order.
var AllFarben = [NumFarben]Farbe{Eichel, Gras, Herz, Schelln}

// FarbeFromName parses either the letter or the German name of a suit.
func FarbeFromName(s string) (Farbe, error) {
	for _, f := range AllFarben {
		if strings.EqualFold(s, f.Name()) || strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown farbe %q", s)
}

// Schlag is a rank.
type Schlag uint8

const (
	Sieben Schlag = iota
	Acht
	Neun
	Unter
	Ober
	Koenig
	Zehn
	Ass
)

const NumSchlags = 8

var schlagLetters = "789UOKZA"

func (s Schlag) String() string {
	return string(schlagLetters[s])
}

// AllSchlags lists ranks in ascending 7 < 8 < 9 < U < O < K < Z < A order.
var AllSchlags = [NumSchlags]Schlag{Sieben, Acht, Neun, Unter, Ober, Koenig, Zehn, Ass}

// Card is a (Farbe, Schlag) pair packed as farbe*8 + schlag.
type Card uint8

const NumCards = NumFarben * NumSchlags

// All 32 cards, named by their two-letter form.
const (
	E7 Card = iota
	E8
	E9
	EU
	EO
	EK
	EZ
	EA
	G7
	G8
	G9
	GU
	GO
	GK
	GZ
	GA
	H7
	H8
	H9
	HU
	HO
	HK
	HZ
	HA
	S7
	S8
	S9
	SU
	SO
	SK
	SZ
	SA
)

func New(f Farbe, s Schlag) Card {
	return Card(uint8(f)*NumSchlags + uint8(s))
}

func (c Card) Farbe() Farbe {
	return Farbe(c / NumSchlags)
}

func (c Card) Schlag() Schlag {
	return Schlag(c % NumSchlags)
}

var schlagPoints = [NumSchlags]int{0, 0, 0, 2, 3, 4, 10, 11}

// Points returns the card's value when counting a stich.
func (c Card) Points() int {
	return schlagPoints[c.Schlag()]
}

func (c Card) String() string {
	return c.Farbe().String() + c.Schlag().String()
}

// FromString parses the two-letter form of a card, e.g. "EA" or "s9".
func FromString(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCard, s)
	}
	u := strings.ToUpper(s)
	fi := strings.IndexByte(farbeLetters, u[0])
	si := strings.IndexByte(schlagLetters, u[1])
	if fi < 0 || si < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCard, s)
	}
	return New(Farbe(fi), Schlag(si)), nil
}

// MustFromString is FromString for literals known to be valid.
func MustFromString(s string) Card {
	c, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses cards separated by whitespace or commas.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := FromString(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards panics on malformed input. Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// KurzLang selects between the 32-card (Lang) and 24-card (Kurz) deck.
type KurzLang uint8

const (
	Lang KurzLang = iota
	Kurz
)

func (kl KurzLang) String() string {
	if kl == Kurz {
		return "kurz"
	}
	return "lang"
}

func (kl KurzLang) CardsPerPlayer() int {
	if kl == Kurz {
		return 6
	}
	return 8
}

func (kl KurzLang) NumCards() int {
	return kl.CardsPerPlayer() * NumPlayers
}

func (kl KurzLang) Contains(c Card) bool {
	return kl == Lang || c.Schlag() > Acht
}

var deckSets = func() [2]Set {
	var ret [2]Set
	for c := Card(0); c < NumCards; c++ {
		ret[Lang] = ret[Lang].Add(c)
		if Kurz.Contains(c) {
			ret[Kurz] = ret[Kurz].Add(c)
		}
	}
	return ret
}()

// Set returns every card of the deck.
func (kl KurzLang) Set() Set {
	return deckSets[kl]
}

// Cards returns the deck in card order.
func (kl KurzLang) Cards() []Card {
	return deckSets[kl].Cards()
}

// KurzLangFromCardsPerPlayer recovers the deck from a hand size.
func KurzLangFromCardsPerPlayer(n int) (KurzLang, error) {
	switch n {
	case 8:
		return Lang, nil
	case 6:
		return Kurz, nil
	}
	return Lang, fmt.Errorf("no deck with %d cards per player", n)
}
