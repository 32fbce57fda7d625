package partition

import (
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/domino14/schafkopf/card"
)

func eichelChain() [][]card.Card {
	return [][]card.Card{card.MustParseCards("EA EZ EK EO EU E9 E8 E7")}
}

func TestRemoveAndReadd(t *testing.T) {
	is := is.New(t)
	p := New(eichelChain())
	orig := *p

	r := p.RemoveFromChain(card.EK)
	next, ok := p.Next(card.EZ)
	is.True(ok)
	is.Equal(next, card.EO)
	prev, ok := p.Prev(card.EO)
	is.True(ok)
	is.Equal(prev, card.EZ)
	is.True(p.IsRemoved(card.EK))

	p.Readd(r)
	is.Equal(*p, orig)
}

func TestStackDisciplineRandomized(t *testing.T) {
	is := is.New(t)
	p := New(eichelChain())
	orig := *p
	for round := 0; round < 50; round++ {
		perm := frand.Perm(8)
		var tokens []Removed
		for _, i := range perm[:1+frand.Intn(8)] {
			tokens = append(tokens, p.RemoveFromChain(card.New(card.Eichel, card.Schlag(i))))
		}
		for i := len(tokens) - 1; i >= 0; i-- {
			p.Readd(tokens[i])
		}
		is.Equal(*p, orig)
	}
}

func TestPrevWhileContainedAndRun(t *testing.T) {
	is := is.New(t)
	p := New(eichelChain())
	hand := card.SetOf(card.EZ, card.EK, card.EU, card.E8)
	is.Equal(p.PrevWhileContained(card.EK, hand), card.EZ)
	is.Equal(p.Run(card.EK, hand), []card.Card{card.EZ, card.EK})
	is.Equal(p.Run(card.EU, hand), []card.Card{card.EU})

	// Once EO and E9 are played, EK..E8 become one run on this hand.
	r1 := p.RemoveFromChain(card.EO)
	r2 := p.RemoveFromChain(card.E9)
	is.Equal(p.Run(card.E8, hand), []card.Card{card.EZ, card.EK, card.EU, card.E8})
	p.Readd(r2)
	p.Readd(r1)
	is.Equal(p.Run(card.E8, hand), []card.Card{card.E8})
}

func TestChains(t *testing.T) {
	is := is.New(t)
	p := New([][]card.Card{
		card.MustParseCards("EA EZ"),
		card.MustParseCards("GK GO GU"),
	})
	p.RemoveFromChain(card.GO)
	chains := p.Chains()
	var long [][]card.Card
	for _, c := range chains {
		if len(c) > 1 {
			long = append(long, c)
		}
	}
	is.Equal(long, [][]card.Card{
		card.MustParseCards("EA EZ"),
		card.MustParseCards("GK GU"),
	})
	is.Equal(p.String(), "EA>EZ | GK>GU")
}
