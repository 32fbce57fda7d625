package montecarlo

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/schafkopf/card"
	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/stats"
)

func TestPassTest(t *testing.T) {
	is := is.New(t)
	z95 := stats.Confidence95.Z()
	is.True(passTest(30, z95*1, 25, z95*1))
	is.True(!passTest(30, z95*1, 29, z95*1))
}

func cardStatsWith(c card.Card, st gametree.Strategy, payouts ...int) *CardStats {
	cs := newCardStats(c)
	for _, p := range payouts {
		cs.Payout[st].Push(p)
	}
	return cs
}

func TestShouldStop(t *testing.T) {
	is := is.New(t)
	var good, bad []int
	for i := range 40 {
		good = append(good, 100+i%3)
		bad = append(bad, -100-i%3)
	}
	cards := []*CardStats{
		cardStatsWith(card.EO, gametree.SelfishMin, good...),
		cardStatsWith(card.E7, gametree.SelfishMin, bad...),
	}
	is.True(!shouldStop(cards, gametree.SelfishMin, StopNone, 40))
	is.True(!shouldStop(cards, gametree.SelfishMin, Stop99, 8))
	is.True(shouldStop(cards, gametree.SelfishMin, Stop99, 40))
	is.True(cards[1].ignore)
	is.True(!cards[0].ignore)

	tied := []*CardStats{
		cardStatsWith(card.EO, gametree.SelfishMin, good...),
		cardStatsWith(card.GO, gametree.SelfishMin, good...),
	}
	is.True(!shouldStop(tied, gametree.SelfishMin, Stop95, 40))
}
