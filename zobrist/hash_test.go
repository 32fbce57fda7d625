package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/schafkopf/card"
)

var testDeal = card.MustParseAHand(
	"EO GO HA HZ EA EZ GA S7/HO SO EU HK E9 E8 GZ S8/GU HU SU H9 EK E7 GK S9/H8 H7 G9 G8 G7 SA SZ SK")

func TestPlayAndUnplay(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	h := z.Hash(testDeal, 0)
	h1 := z.PlayCard(h, 0, card.EO)
	is.True(h1 != h) // extremely unlikely to collide
	h2 := z.PlayCard(h1, 0, card.EO)
	is.Equal(h, h2)

	ahand := testDeal
	ahand[0].PlayCard(card.EO)
	is.Equal(z.Hash(ahand, card.SetOf(card.EO)), h1)
}

func TestMoveCard(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	// Swap EO and HO between the first two players.
	swapped := testDeal
	swapped[0].PlayCard(card.EO)
	swapped[1].AddCard(card.EO)
	swapped[1].PlayCard(card.HO)
	swapped[0].AddCard(card.HO)

	h := z.Hash(testDeal, 0)
	hs := z.Hash(swapped, 0)
	is.True(h != hs)
	is.Equal(z.MoveCard(z.MoveCard(h, 0, 1, card.EO), 1, 0, card.HO), hs)
	is.Equal(z.Hash(testDeal, 0), h)
}
