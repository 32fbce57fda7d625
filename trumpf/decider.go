// Package trumpf decides which cards are trump and how cards rank against
// each other under a given contract.
package trumpf

import (
	"slices"

	"github.com/domino14/schafkopf/card"
)

// TrumpfOrFarbe is the category a card belongs to when following suit:
// either trump or one of the four suits.
type TrumpfOrFarbe struct {
	trumpf bool
	farbe  card.Farbe
}

// NumCategories is trump plus the four suits.
const NumCategories = 1 + card.NumFarben

func Trumpf() TrumpfOrFarbe {
	return TrumpfOrFarbe{trumpf: true}
}

func Farbe(f card.Farbe) TrumpfOrFarbe {
	return TrumpfOrFarbe{farbe: f}
}

func (t TrumpfOrFarbe) IsTrumpf() bool {
	return t.trumpf
}

// Farbe returns the suit for non-trump categories.
func (t TrumpfOrFarbe) Farbe() (card.Farbe, bool) {
	return t.farbe, !t.trumpf
}

// Index maps trump to 0 and suits to 1..4.
func (t TrumpfOrFarbe) Index() int {
	if t.trumpf {
		return 0
	}
	return 1 + int(t.farbe)
}

func (t TrumpfOrFarbe) String() string {
	if t.trumpf {
		return "Trumpf"
	}
	return t.farbe.Name()
}

var normalFarbeOrder = []card.Schlag{card.Ass, card.Zehn, card.Koenig, card.Ober, card.Unter, card.Neun, card.Acht, card.Sieben}
var bettelFarbeOrder = []card.Schlag{card.Ass, card.Koenig, card.Ober, card.Unter, card.Zehn, card.Neun, card.Acht, card.Sieben}

// Decider classifies and ranks cards. Trump ranks are listed highest first;
// within a trump rank Eichel beats Gras beats Herz beats Schelln.
type Decider struct {
	schlags  []card.Schlag
	farbe    card.Farbe
	hasFarbe bool
	bettel   bool

	category [card.NumCards]TrumpfOrFarbe
	// power orders cards within their category; higher wins.
	power  [card.NumCards]int
	chains [NumCategories][]card.Card
}

// New creates a decider without a trump suit.
func New(schlags ...card.Schlag) *Decider {
	d := &Decider{schlags: slices.Clone(schlags)}
	d.init()
	return d
}

// NewWithFarbe creates a decider with trump ranks and a trump suit.
func NewWithFarbe(f card.Farbe, schlags ...card.Schlag) *Decider {
	d := &Decider{schlags: slices.Clone(schlags), farbe: f, hasFarbe: true}
	d.init()
	return d
}

// NewBettel creates the trumpless decider with Bettel suit ordering.
func NewBettel() *Decider {
	d := &Decider{bettel: true}
	d.init()
	return d
}

func Solo(f card.Farbe) *Decider      { return NewWithFarbe(f, card.Ober, card.Unter) }
func Wenz() *Decider                  { return New(card.Unter) }
func Geier() *Decider                 { return New(card.Ober) }
func Farbwenz(f card.Farbe) *Decider  { return NewWithFarbe(f, card.Unter) }
func Farbgeier(f card.Farbe) *Decider { return NewWithFarbe(f, card.Ober) }

func (d *Decider) isTrumpfSchlag(s card.Schlag) bool {
	return slices.Contains(d.schlags, s)
}

func (d *Decider) farbeOrder(f card.Farbe) []card.Card {
	order := normalFarbeOrder
	if d.bettel {
		order = bettelFarbeOrder
	}
	ret := make([]card.Card, 0, card.NumSchlags)
	for _, s := range order {
		if !d.isTrumpfSchlag(s) {
			ret = append(ret, card.New(f, s))
		}
	}
	return ret
}

func (d *Decider) init() {
	trumpfs := d.trumpfsDescending()
	d.chains[0] = trumpfs
	for i, c := range trumpfs {
		d.category[c] = Trumpf()
		d.power[c] = len(trumpfs) - i
	}
	for _, f := range card.AllFarben {
		if d.hasFarbe && f == d.farbe {
			continue
		}
		cards := d.farbeOrder(f)
		cat := Farbe(f)
		d.chains[cat.Index()] = cards
		for i, c := range cards {
			d.category[c] = cat
			d.power[c] = len(cards) - i
		}
	}
}

func (d *Decider) trumpfsDescending() []card.Card {
	ret := make([]card.Card, 0, 14)
	for _, s := range d.schlags {
		for _, f := range card.AllFarben {
			ret = append(ret, card.New(f, s))
		}
	}
	if d.hasFarbe {
		ret = append(ret, d.farbeOrder(d.farbe)...)
	}
	return ret
}

func (d *Decider) TrumpfOrFarbe(c card.Card) TrumpfOrFarbe {
	return d.category[c]
}

// TrumpfFarbe returns the trump suit, if any.
func (d *Decider) TrumpfFarbe() (card.Farbe, bool) {
	return d.farbe, d.hasFarbe
}

// Schlags returns the trump ranks, highest first.
func (d *Decider) Schlags() []card.Schlag {
	return d.schlags
}

// TrumpfsInDescendingOrder lists all trumps of the full deck, highest first.
func (d *Decider) TrumpfsInDescendingOrder() []card.Card {
	return d.chains[0]
}

// Power returns a rank within the card's category; higher beats lower.
func (d *Decider) Power(c card.Card) int {
	return d.power[c]
}

// CompareCards returns +1 if a beats b, -1 if b beats a and 0 if a == b.
// The second return is false if the cards are incomparable (different
// categories).
func (d *Decider) CompareCards(a, b card.Card) (int, bool) {
	if d.category[a] != d.category[b] {
		return 0, false
	}
	switch pa, pb := d.power[a], d.power[b]; {
	case pa > pb:
		return 1, true
	case pa < pb:
		return -1, true
	}
	return 0, true
}

// EquivalentWhenOnSameHand groups the full deck by category, each group in
// descending order.
func (d *Decider) EquivalentWhenOnSameHand() map[TrumpfOrFarbe][]card.Card {
	ret := make(map[TrumpfOrFarbe][]card.Card, NumCategories)
	for _, chain := range d.chains {
		if len(chain) == 0 {
			continue
		}
		ret[d.category[chain[0]]] = chain
	}
	return ret
}

// Categories returns the non-empty category lists in a fixed order: trump
// first, then suits Eichel to Schelln.
func (d *Decider) Categories() [][]card.Card {
	ret := make([][]card.Card, 0, NumCategories)
	for _, chain := range d.chains {
		if len(chain) > 0 {
			ret = append(ret, chain)
		}
	}
	return ret
}

// SortCardsFirstTrumpfThenFarbe sorts trumps first, then suits in card
// order, each descending.
func (d *Decider) SortCardsFirstTrumpfThenFarbe(cards []card.Card) {
	slices.SortFunc(cards, func(a, b card.Card) int {
		ca, cb := d.category[a].Index(), d.category[b].Index()
		if ca != cb {
			return ca - cb
		}
		return d.power[b] - d.power[a]
	})
}
