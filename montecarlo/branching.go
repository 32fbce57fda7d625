package montecarlo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/schafkopf/gametree"
	"github.com/domino14/schafkopf/oracle"
)

type branchingKind uint8

const (
	branchNone branchingKind = iota
	branchEquiv
	branchOracle
)

// Branching selects the filter applied below the root of every search.
type Branching struct {
	kind branchingKind
	// stichs during which the equivalence filter is used
	n int
}

var (
	NoBranching     = Branching{}
	OracleBranching = Branching{kind: branchOracle}
)

func EquivBranching(n int) Branching {
	return Branching{kind: branchEquiv, n: n}
}

// ParseBranching accepts "none", "oracle" and "equivN", e.g. "equiv7".
func ParseBranching(s string) (Branching, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none":
		return NoBranching, nil
	case "oracle":
		return OracleBranching, nil
	}
	if rest, ok := strings.CutPrefix(s, "equiv"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return NoBranching, fmt.Errorf("bad equivalence depth in %q", s)
		}
		return EquivBranching(n), nil
	}
	return NoBranching, fmt.Errorf("unknown branching %q", s)
}

func (b Branching) String() string {
	switch b.kind {
	case branchEquiv:
		return fmt.Sprintf("equiv%d", b.n)
	case branchOracle:
		return "oracle"
	}
	return "none"
}

// Factory returns the filter factory for gametree.Config; nil means no
// filter.
func (b Branching) Factory() gametree.FilterFactory {
	switch b.kind {
	case branchEquiv:
		return gametree.Equivalence(b.n)
	case branchOracle:
		return oracle.New
	}
	return nil
}
