package gametree

import (
	"fmt"
	"strings"
)

// Strategy is an assumption about how the other players choose their cards.
type Strategy uint8

const (
	// Min assumes every card from here on, the searching player's own later
	// cards included, is played against the searching player. It bounds
	// the payout from below.
	Min Strategy = iota
	// SelfishMin assumes everybody maximizes their own payout and breaks
	// ties against the searching player.
	SelfishMin
	// SelfishMax is SelfishMin with ties broken in favour of the searching
	// player.
	SelfishMax
	// Max assumes every card is played for the searching player.
	Max
)

const NumStrategies = 4

var AllStrategies = [NumStrategies]Strategy{Min, SelfishMin, SelfishMax, Max}

var strategyNames = [NumStrategies]string{"min", "selfish-min", "selfish-max", "max"}

func (s Strategy) String() string {
	return strategyNames[s]
}

func ParseStrategy(s string) (Strategy, error) {
	for _, st := range AllStrategies {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return Min, fmt.Errorf("unknown strategy %q", s)
}

// PerStrategy carries one value per strategy.
type PerStrategy[T any] [NumStrategies]T

// MapPerStrategy applies f to every strategy's value.
func MapPerStrategy[T, U any](ps PerStrategy[T], f func(Strategy, T) U) PerStrategy[U] {
	var ret PerStrategy[U]
	for _, s := range AllStrategies {
		ret[s] = f(s, ps[s])
	}
	return ret
}

// StrategySet is a bit set of strategies.
type StrategySet uint8

const (
	AllStrategySet     StrategySet = 1<<NumStrategies - 1
	SelfishStrategySet StrategySet = 1<<SelfishMin | 1<<SelfishMax
)

func (ss StrategySet) Contains(s Strategy) bool {
	return ss&(1<<s) != 0
}

func (ss StrategySet) String() string {
	var names []string
	for _, s := range AllStrategies {
		if ss.Contains(s) {
			names = append(names, s.String())
		}
	}
	return strings.Join(names, ",")
}
