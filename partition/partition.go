// Package partition keeps chains of cards that are interchangeable while held
// by the same player. Chains are doubly linked over card indices so that
// removing a played card and putting it back are O(1).
package partition

import (
	"fmt"
	"strings"

	"github.com/domino14/schafkopf/card"
)

const none = -1

// Partition is a set of disjoint chains. The zero value has every card
// isolated.
type Partition struct {
	prev    [card.NumCards]int8
	next    [card.NumCards]int8
	removed card.Set
}

// New seeds a partition from chains; cards in no chain are isolated.
func New(chains [][]card.Card) *Partition {
	p := &Partition{}
	for i := range p.prev {
		p.prev[i] = none
		p.next[i] = none
	}
	seen := card.Set(0)
	for _, chain := range chains {
		for i, c := range chain {
			if seen.Contains(c) {
				panic(fmt.Sprintf("card %v in two chains", c))
			}
			seen = seen.Add(c)
			if i > 0 {
				p.prev[c] = int8(chain[i-1])
				p.next[chain[i-1]] = int8(c)
			}
		}
	}
	return p
}

// Removed is the undo token of RemoveFromChain.
type Removed struct {
	c          card.Card
	prev, next int8
}

func (r Removed) Card() card.Card {
	return r.c
}

// RemoveFromChain splices c out of its chain, joining its neighbours.
func (p *Partition) RemoveFromChain(c card.Card) Removed {
	if p.removed.Contains(c) {
		panic(fmt.Sprintf("card %v removed twice", c))
	}
	r := Removed{c: c, prev: p.prev[c], next: p.next[c]}
	if r.prev != none {
		p.next[r.prev] = r.next
	}
	if r.next != none {
		p.prev[r.next] = r.prev
	}
	p.removed = p.removed.Add(c)
	return r
}

// Readd reverses RemoveFromChain. Tokens must be readded in reverse order of
// removal.
func (p *Partition) Readd(r Removed) {
	if !p.removed.Contains(r.c) {
		panic(fmt.Sprintf("readd of card %v that was not removed", r.c))
	}
	if r.prev != none {
		if p.next[r.prev] != r.next {
			panic(fmt.Sprintf("readd of %v out of order", r.c))
		}
		p.next[r.prev] = int8(r.c)
	}
	if r.next != none {
		if p.prev[r.next] != r.prev {
			panic(fmt.Sprintf("readd of %v out of order", r.c))
		}
		p.prev[r.next] = int8(r.c)
	}
	p.prev[r.c] = r.prev
	p.next[r.c] = r.next
	p.removed = p.removed.Remove(r.c)
}

func (p *Partition) IsRemoved(c card.Card) bool {
	return p.removed.Contains(c)
}

// Removed returns the set of cards currently spliced out.
func (p *Partition) RemovedSet() card.Set {
	return p.removed
}

func (p *Partition) Next(c card.Card) (card.Card, bool) {
	n := p.next[c]
	return card.Card(n), n != none
}

func (p *Partition) Prev(c card.Card) (card.Card, bool) {
	n := p.prev[c]
	return card.Card(n), n != none
}

// PrevWhileContained walks towards the chain head while the previous card is
// in set and returns the topmost card reached.
func (p *Partition) PrevWhileContained(c card.Card, set card.Set) card.Card {
	for {
		prev := p.prev[c]
		if prev == none || !set.Contains(card.Card(prev)) {
			return c
		}
		c = card.Card(prev)
	}
}

// Run returns the maximal stretch of consecutive chain members around c that
// are all in set, head first. c itself must be in set.
func (p *Partition) Run(c card.Card, set card.Set) []card.Card {
	head := p.PrevWhileContained(c, set)
	run := []card.Card{head}
	for cur := head; ; {
		n, ok := p.Next(cur)
		if !ok || !set.Contains(n) {
			return run
		}
		run = append(run, n)
		cur = n
	}
}

// Chains returns the chains over cards that are not removed, ordered by head.
func (p *Partition) Chains() [][]card.Card {
	var ret [][]card.Card
	for c := card.Card(0); c < card.NumCards; c++ {
		if p.removed.Contains(c) || p.prev[c] != none {
			continue
		}
		chain := []card.Card{c}
		for cur := c; ; {
			n, ok := p.Next(cur)
			if !ok {
				break
			}
			chain = append(chain, n)
			cur = n
		}
		ret = append(ret, chain)
	}
	return ret
}

func (p *Partition) Clone() *Partition {
	c := *p
	return &c
}

func (p *Partition) String() string {
	var sb strings.Builder
	for _, chain := range p.Chains() {
		if len(chain) < 2 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" | ")
		}
		for i, c := range chain {
			if i > 0 {
				sb.WriteByte('>')
			}
			sb.WriteString(c.String())
		}
	}
	return sb.String()
}
