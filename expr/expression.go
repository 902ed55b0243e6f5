// Package expr implements real-valued symbolic parameter expressions of
// degree at most two over free symbols. Gate angles and global phases are
// expressions; binding all symbols collapses an expression to a float64.
package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Expression []Term

// NewConstant returns c
func NewConstant(c float64) Expression {
	return Expression{NewTerm(0, 0, c)}
}

// NewLinear returns c * s
func NewLinear(c float64, s Symbol) Expression {
	return Expression{NewTerm(s, 0, c)}
}

// NewQuadratic returns c * s0 * s1
func NewQuadratic(c float64, s0, s1 Symbol) Expression {
	return Expression{NewTerm(s0, s1, c)}
}

func (e Expression) Clone() Expression {
	res := make(Expression, len(e))
	copy(res, e)
	return res
}

// normalize sorts terms and merges terms over the same symbol pair.
// Zero-coefficient terms are dropped; the empty expression means 0.
func (e Expression) normalize() Expression {
	sort.Slice(e, func(i, j int) bool {
		if e[i].Sym0 != e[j].Sym0 {
			return e[i].Sym0 < e[j].Sym0
		}
		return e[i].Sym1 < e[j].Sym1
	})
	res := make(Expression, 0, len(e))
	for _, t := range e {
		if n := len(res); n > 0 && res[n-1].Sym0 == t.Sym0 && res[n-1].Sym1 == t.Sym1 {
			res[n-1].Coeff += t.Coeff
			continue
		}
		res = append(res, t)
	}
	out := res[:0]
	for _, t := range res {
		if t.Coeff != 0 {
			out = append(out, t)
		}
	}
	return out
}

func (e Expression) Add(o Expression) Expression {
	res := make(Expression, 0, len(e)+len(o))
	res = append(res, e...)
	res = append(res, o...)
	return res.normalize()
}

func (e Expression) Neg() Expression {
	return e.MulConst(-1)
}

func (e Expression) Sub(o Expression) Expression {
	return e.Add(o.Neg())
}

func (e Expression) AddConst(c float64) Expression {
	return e.Add(NewConstant(c))
}

func (e Expression) MulConst(c float64) Expression {
	res := make(Expression, len(e))
	for i, t := range e {
		res[i] = Term{Sym0: t.Sym0, Sym1: t.Sym1, Coeff: t.Coeff * c}
	}
	return res.normalize()
}

// Mul multiplies two expressions. The product degree must not exceed two;
// a higher degree indicates a corrupted equivalence template and panics.
func (e Expression) Mul(o Expression) Expression {
	res := make(Expression, 0, len(e)*len(o))
	for _, a := range e {
		for _, b := range o {
			if a.Degree()+b.Degree() > 2 {
				panic("expr: parameter expression degree exceeds 2")
			}
			s0, s1 := a.Sym0, b.Sym0
			if s0 == 0 {
				s0, s1 = s1, a.Sym1
			} else if s1 == 0 {
				s1 = a.Sym1
			}
			res = append(res, NewTerm(s0, s1, a.Coeff*b.Coeff))
		}
	}
	return res.normalize()
}

func (e Expression) IsConstant() bool {
	for _, t := range e {
		if t.Sym0 != 0 || t.Sym1 != 0 {
			return false
		}
	}
	return true
}

// Const returns the numeric value of a fully bound expression. The second
// return is false if any free symbol remains.
func (e Expression) Const() (float64, bool) {
	if !e.IsConstant() {
		return 0, false
	}
	v := 0.0
	for _, t := range e {
		v += t.Coeff
	}
	return v, true
}

// MustConst is Const for expressions known to be bound; it panics otherwise.
func (e Expression) MustConst() float64 {
	v, ok := e.Const()
	if !ok {
		panic(fmt.Sprintf("expr: unbound parameter expression %s", e.String()))
	}
	return v
}

// Symbols returns the distinct free symbols of e in ascending order.
func (e Expression) Symbols() []Symbol {
	seen := map[Symbol]bool{}
	var res []Symbol
	for _, t := range e {
		for _, s := range [2]Symbol{t.Sym0, t.Sym1} {
			if s != 0 && !seen[s] {
				seen[s] = true
				res = append(res, s)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Bind substitutes expressions for symbols. Symbols missing from the map are
// left free, so partial binding composes.
func (e Expression) Bind(m map[Symbol]Expression) Expression {
	one := NewConstant(1)
	sub := func(s Symbol) Expression {
		if s == 0 {
			return one
		}
		if v, ok := m[s]; ok {
			return v
		}
		return NewLinear(1, s)
	}
	res := Expression{}
	for _, t := range e {
		res = append(res, NewConstant(t.Coeff).Mul(sub(t.Sym0)).Mul(sub(t.Sym1))...)
	}
	return res.normalize()
}

// Equal reports structural equality of two normalized expressions.
func (e Expression) Equal(o Expression) bool {
	a, b := e.Clone().normalize(), o.Clone().normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HashCode returns a fast, order-insensitive hash of the expression.
func (e Expression) HashCode() uint64 {
	h := uint64(17)
	for _, t := range e.Clone().normalize() {
		h = h*23 + t.HashCode()
	}
	return h
}

func (e Expression) Degree() int {
	res := 0
	for _, t := range e {
		if d := t.Degree(); d > res {
			res = d
		}
	}
	return res
}

func (e Expression) String() string {
	if len(e) == 0 {
		return "0"
	}
	s := make([]string, len(e))
	for i, t := range e {
		c := strconv.FormatFloat(t.Coeff, 'g', -1, 64)
		switch t.Degree() {
		case 0:
			s[i] = c
		case 1:
			s[i] = c + "*" + t.Sym0.Name()
		default:
			s[i] = c + "*" + t.Sym0.Name() + "*" + t.Sym1.Name()
		}
	}
	return strings.Join(s, "+")
}
