package expr

import (
	"math"
	"strconv"
	"sync"
)

// Symbol identifies a free parameter of a gate or a template. Symbol 0 is
// reserved and means "no symbol"; a term with both symbols 0 is a constant.
type Symbol int

var symRegistry = struct {
	sync.Mutex
	names []string
}{
	// index 0 is the reserved empty symbol
	names: []string{""},
}

// NewSymbol allocates a fresh symbol with the given display name. Two calls
// with the same name yield two distinct symbols; identity is the symbol id,
// never the name.
func NewSymbol(name string) Symbol {
	symRegistry.Lock()
	defer symRegistry.Unlock()
	s := Symbol(len(symRegistry.names))
	symRegistry.names = append(symRegistry.names, name)
	return s
}

func (s Symbol) Name() string {
	symRegistry.Lock()
	defer symRegistry.Unlock()
	if s >= 0 && int(s) < len(symRegistry.names) {
		return symRegistry.names[s]
	}
	return "?" + strconv.Itoa(int(s))
}

type Term struct {
	// if Sym1 is 0, it is a linear term.
	// if both symbols are 0, it is a constant.
	Sym0  Symbol
	Sym1  Symbol
	Coeff float64
}

func NewTerm(s0, s1 Symbol, coeff float64) Term {
	if s0 < s1 {
		s0, s1 = s1, s0
	}
	return Term{Coeff: coeff, Sym0: s0, Sym1: s1}
}

func (t Term) HashCode() uint64 {
	x := math.Float64bits(t.Coeff)
	x ^= uint64(t.Sym0) * 998244353
	x ^= uint64(t.Sym1) * 1000000007
	return x
}

func (t Term) Degree() int {
	if t.Sym0 == 0 {
		return 0
	}
	if t.Sym1 == 0 {
		return 1
	}
	return 2
}
