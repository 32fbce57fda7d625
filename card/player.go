package card

import (
	"fmt"
	"strconv"
)

// PlayerIndex identifies a seat. Position 0 leads the first stich of a round.
type PlayerIndex uint8

const NumPlayers = 4

// NoPlayer marks cards that are not part of the deck in use.
const NoPlayer PlayerIndex = 0xff

func (p PlayerIndex) Next() PlayerIndex {
	return (p + 1) % NumPlayers
}

// Add advances n seats, wrapping around the table.
func (p PlayerIndex) Add(n int) PlayerIndex {
	return PlayerIndex((int(p) + n%NumPlayers + NumPlayers) % NumPlayers)
}

// Distance returns how many seats p is after from.
func (p PlayerIndex) Distance(from PlayerIndex) int {
	return (int(p) - int(from) + NumPlayers) % NumPlayers
}

func (p PlayerIndex) String() string {
	if p == NoPlayer {
		return "-"
	}
	return strconv.Itoa(int(p))
}

func (p PlayerIndex) Valid() bool {
	return p < NumPlayers
}

var AllPlayers = [NumPlayers]PlayerIndex{0, 1, 2, 3}

// PlayersFrom returns the four seats in play order starting at first.
func PlayersFrom(first PlayerIndex) [NumPlayers]PlayerIndex {
	var ret [NumPlayers]PlayerIndex
	for i := range ret {
		ret[i] = first.Add(i)
	}
	return ret
}

func ParsePlayerIndex(s string) (PlayerIndex, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= NumPlayers {
		return 0, fmt.Errorf("invalid player index %q", s)
	}
	return PlayerIndex(n), nil
}
