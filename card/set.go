package card

import (
	"iter"
	"math/bits"
	"strings"
)

// Set is a set of cards, one bit per card.
type Set uint32

func SetOf(cards ...Card) Set {
	var s Set
	for _, c := range cards {
		s = s.Add(c)
	}
	return s
}

func (s Set) Contains(c Card) bool {
	return s&(1<<c) != 0
}

func (s Set) Add(c Card) Set {
	return s | 1<<c
}

func (s Set) Remove(c Card) Set {
	return s &^ (1 << c)
}

func (s Set) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s Set) IsEmpty() bool {
	return s == 0
}

func (s Set) Union(o Set) Set {
	return s | o
}

func (s Set) Intersect(o Set) Set {
	return s & o
}

func (s Set) Minus(o Set) Set {
	return s &^ o
}

// All iterates cards in ascending card order.
func (s Set) All() iter.Seq[Card] {
	return func(yield func(Card) bool) {
		for rest := uint32(s); rest != 0; rest &= rest - 1 {
			if !yield(Card(bits.TrailingZeros32(rest))) {
				return
			}
		}
	}
}

func (s Set) Cards() []Card {
	ret := make([]Card, 0, s.Len())
	for c := range s.All() {
		ret = append(ret, c)
	}
	return ret
}

func (s Set) Points() int {
	pts := 0
	for c := range s.All() {
		pts += c.Points()
	}
	return pts
}

func (s Set) String() string {
	var sb strings.Builder
	for c := range s.All() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}
