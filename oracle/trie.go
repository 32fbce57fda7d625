package oracle

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/domino14/schafkopf/card"
)

// StichTrie holds completions of the current stich. Every root-to-leaf path
// is one completion, siblings carry distinct cards and all leaves sit at the
// same depth.
type StichTrie struct {
	cards    []card.Card
	children []*StichTrie
}

// FromPath returns a trie holding exactly one completion.
func FromPath(cards ...card.Card) *StichTrie {
	t := &StichTrie{}
	for i := len(cards) - 1; i >= 0; i-- {
		t = &StichTrie{cards: []card.Card{cards[i]}, children: []*StichTrie{t}}
	}
	return t
}

func (t *StichTrie) IsLeaf() bool {
	return len(t.cards) == 0
}

// Depth is the number of cards on every path.
func (t *StichTrie) Depth() int {
	d := 0
	for n := t; !n.IsLeaf(); n = n.children[0] {
		d++
	}
	return d
}

// Cards returns the cards at the root.
func (t *StichTrie) Cards() card.Set {
	return card.SetOf(t.cards...)
}

func (t *StichTrie) Child(c card.Card) (*StichTrie, bool) {
	if i := slices.Index(t.cards, c); i >= 0 {
		return t.children[i], true
	}
	return nil, false
}

func (t *StichTrie) clone() *StichTrie {
	ret := &StichTrie{
		cards:    slices.Clone(t.cards),
		children: make([]*StichTrie, len(t.children)),
	}
	for i, ch := range t.children {
		ret.children[i] = ch.clone()
	}
	return ret
}

// Insert adds sub below c. If c is present already, sub is merged into a
// copy of the existing child, so subtries may be shared between siblings.
func (t *StichTrie) Insert(c card.Card, sub *StichTrie) {
	if !t.IsLeaf() && t.children[0].Depth() != sub.Depth() {
		panic(fmt.Sprintf("inserting depth %d below depth %d", sub.Depth(), t.children[0].Depth()))
	}
	if i := slices.Index(t.cards, c); i >= 0 {
		merged := t.children[i].clone()
		merged.Merge(sub)
		t.children[i] = merged
		return
	}
	t.cards = append(t.cards, c)
	t.children = append(t.children, sub)
}

// Merge adds all completions of other. An empty trie takes on the depth of
// whatever is merged into it.
func (t *StichTrie) Merge(other *StichTrie) {
	if !t.IsLeaf() && !other.IsLeaf() && t.Depth() != other.Depth() {
		panic(fmt.Sprintf("merging tries of depth %d and %d", t.Depth(), other.Depth()))
	}
	for i, c := range other.cards {
		t.Insert(c, other.children[i])
	}
}

// Traverse yields every completion, root card first.
func (t *StichTrie) Traverse() iter.Seq[[]card.Card] {
	return func(yield func([]card.Card) bool) {
		path := make([]card.Card, 0, card.NumPlayers)
		t.traverse(&path, yield)
	}
}

func (t *StichTrie) traverse(path *[]card.Card, yield func([]card.Card) bool) bool {
	if t.IsLeaf() {
		return yield(slices.Clone(*path))
	}
	for i, c := range t.cards {
		*path = append(*path, c)
		ok := t.children[i].traverse(path, yield)
		*path = (*path)[:len(*path)-1]
		if !ok {
			return false
		}
	}
	return true
}

// Len counts the completions.
func (t *StichTrie) Len() int {
	n := 0
	for range t.Traverse() {
		n++
	}
	return n
}

func (t *StichTrie) String() string {
	var paths []string
	for path := range t.Traverse() {
		strs := make([]string, len(path))
		for i, c := range path {
			strs[i] = c.String()
		}
		paths = append(paths, strings.Join(strs, " "))
	}
	return strings.Join(paths, " | ")
}
