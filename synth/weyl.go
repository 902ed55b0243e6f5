package synth

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// magic is the Bell (magic) basis change. Conjugating by it maps the group
// of one-qubit gate pairs onto the real orthogonal group.
var magic = Scale(complex(1/math.Sqrt2, 0), mat.NewCDense(4, 4, []complex128{
	1, 0, 0, 1i,
	0, 1i, 1, 0,
	0, 1i, -1, 0,
	1, 0, 0, -1i,
}))

// WeylDecomposition is u = exp(i*Phase) * (L1⊗R1) * A * (L2⊗R2) with
// A = exp(-i/2 (Tx*XX + Ty*YY + Tz*ZZ)). L factors act on qubit 1, R
// factors on qubit 0; all four are special unitary 2x2.
type WeylDecomposition struct {
	Tx, Ty, Tz float64
	Phase      float64
	L1, R1     *mat.CDense
	L2, R2     *mat.CDense
}

// ErrWeylFailed is returned when the joint diagonalization does not
// converge, which indicates an input far from unitary.
var ErrWeylFailed = errors.New("synth: weyl decomposition failed")

// DecomposeWeyl computes the canonical decomposition of a two-qubit
// unitary.
func DecomposeWeyl(u *mat.CDense) (*WeylDecomposition, error) {
	if n, c := u.Dims(); n != 4 || c != 4 {
		return nil, fmt.Errorf("synth: weyl needs a 4x4 matrix, got %dx%d", n, c)
	}
	if !IsUnitaryMatrix(u, 1e-8) {
		return nil, fmt.Errorf("%w: input is not unitary", ErrWeylFailed)
	}

	// normalize to determinant one
	det := Det(u)
	alpha := cmplx.Phase(det) / 4
	up := Scale(cmplx.Exp(complex(0, -alpha)), u)

	// in the magic basis, m = o1 * diag(exp(-i*theta)) * o2 with o1, o2
	// real orthogonal, so m^T m is diagonalized by a real orthogonal basis
	m := Mul(Dagger(magic), Mul(up, magic))
	m2 := Mul(transpose(m), m)

	p, err := jointRealDiagonalize(m2)
	if err != nil {
		return nil, err
	}
	// eigenvalues of m2 in the basis p
	pm2p := Mul(transpose(p), Mul(m2, p))
	theta := make([]float64, 4)
	sum := 0.0
	for k := 0; k < 4; k++ {
		theta[k] = -cmplx.Phase(pm2p.At(k, k)) / 2
		sum += theta[k]
	}
	// the angles are defined mod pi; shift one so they sum to zero
	theta[3] -= math.Pi * math.Round(sum/math.Pi)

	// make p a rotation
	if real(Det(p)) < 0 {
		for i := 0; i < 4; i++ {
			p.Set(i, 0, -p.At(i, 0))
		}
	}

	aInv := mat.NewCDense(4, 4, nil)
	a := mat.NewCDense(4, 4, nil)
	for k := 0; k < 4; k++ {
		a.Set(k, k, cmplx.Exp(complex(0, -theta[k])))
		aInv.Set(k, k, cmplx.Exp(complex(0, theta[k])))
	}
	o2 := transpose(p)
	o1 := Mul(m, Mul(p, aInv))

	k1 := Mul(magic, Mul(o1, Dagger(magic)))
	k2 := Mul(magic, Mul(o2, Dagger(magic)))

	l1, r1, ph1, err := splitKron(k1)
	if err != nil {
		return nil, err
	}
	l2, r2, ph2, err := splitKron(k2)
	if err != nil {
		return nil, err
	}

	w := &WeylDecomposition{
		Tx:    theta[0] + theta[1],
		Ty:    theta[1] + theta[3],
		Tz:    theta[0] + theta[3],
		Phase: alpha + ph1 + ph2,
		L1:    l1, R1: r1,
		L2: l2, R2: r2,
	}
	return w, nil
}

// Reconstruct multiplies the decomposition back out, for verification.
func (w *WeylDecomposition) Reconstruct() *mat.CDense {
	a := canonicalGate(w.Tx, w.Ty, w.Tz)
	u := Mul(Kron(w.L1, w.R1), Mul(a, Kron(w.L2, w.R2)))
	return Scale(cmplx.Exp(complex(0, w.Phase)), u)
}

// canonicalGate returns exp(-i/2 (tx*XX + ty*YY + tz*ZZ)).
func canonicalGate(tx, ty, tz float64) *mat.CDense {
	// diagonal in the magic basis
	th := [4]float64{
		(tx - ty + tz) / 2,
		(tx + ty - tz) / 2,
		(-tx - ty - tz) / 2,
		(-tx + ty + tz) / 2,
	}
	d := mat.NewCDense(4, 4, nil)
	for k := 0; k < 4; k++ {
		d.Set(k, k, cmplx.Exp(complex(0, -th[k])))
	}
	return Mul(magic, Mul(d, Dagger(magic)))
}

func transpose(a *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, a.At(i, j))
		}
	}
	return out
}

// jointRealDiagonalize finds a real orthogonal basis diagonalizing both the
// real and imaginary parts of a symmetric unitary matrix. A fixed sequence
// of mixing weights separates degenerate eigenvalues.
func jointRealDiagonalize(m2 *mat.CDense) (*mat.CDense, error) {
	n, _ := m2.Dims()
	re := mat.NewSymDense(n, nil)
	im := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := (m2.At(i, j) + m2.At(j, i)) / 2
			re.SetSym(i, j, real(v))
			im.SetSym(i, j, imag(v))
		}
	}
	weights := []float64{1, 0.86, 0.71, 0.59, 0.42, 0.33, 0.26, 0.12, 0.05}
	for _, w := range weights {
		mix := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				mix.SetSym(i, j, re.At(i, j)+w*im.At(i, j))
			}
		}
		var eig mat.EigenSym
		if !eig.Factorize(mix, true) {
			continue
		}
		var vecs mat.Dense
		eig.VectorsTo(&vecs)
		p := mat.NewCDense(n, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				p.Set(i, j, complex(vecs.At(i, j), 0))
			}
		}
		if diagonalizes(p, re) && diagonalizes(p, im) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: joint diagonalization did not converge", ErrWeylFailed)
}

func diagonalizes(p *mat.CDense, s *mat.SymDense) bool {
	n, _ := p.Dims()
	sc := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sc.Set(i, j, complex(s.At(i, j), 0))
		}
	}
	d := Mul(transpose(p), Mul(sc, p))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && cmplx.Abs(d.At(i, j)) > 1e-9 {
				return false
			}
		}
	}
	return true
}

// splitKron factors k = exp(i*phase) * (l⊗r) with l, r special unitary.
func splitKron(k *mat.CDense) (l, r *mat.CDense, phase float64, err error) {
	// find the 2x2 block with the largest determinant magnitude; it is a
	// scalar multiple of r
	bestI, bestJ := 0, 0
	best := -1.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			b := block(k, i, j)
			if d := cmplx.Abs(Det(b)); d > best {
				best = d
				bestI, bestJ = i, j
			}
		}
	}
	if best < 1e-12 {
		return nil, nil, 0, fmt.Errorf("%w: factor is not a tensor product", ErrWeylFailed)
	}
	b := block(k, bestI, bestJ)
	db := Det(b)
	r = Scale(1/cmplx.Sqrt(db), b)

	// l entries follow from comparing each block against r
	rInv := Dagger(r)
	l = mat.NewCDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			bl := Mul(block(k, i, j), rInv)
			l.Set(i, j, (bl.At(0, 0)+bl.At(1, 1))/2)
		}
	}
	dl := Det(l)
	if cmplx.Abs(dl) < 1e-12 {
		return nil, nil, 0, fmt.Errorf("%w: factor is not a tensor product", ErrWeylFailed)
	}
	scale := cmplx.Sqrt(dl)
	l = Scale(1/scale, l)

	// the residual scalar is the global phase
	recon := Kron(l, r)
	num, den := complex128(0), 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if cmplx.Abs(recon.At(i, j)) > den {
				den = cmplx.Abs(recon.At(i, j))
				num = k.At(i, j) / recon.At(i, j)
			}
		}
	}
	if math.Abs(cmplx.Abs(num)-1) > 1e-6 {
		return nil, nil, 0, fmt.Errorf("%w: factor is not a tensor product", ErrWeylFailed)
	}
	phase = cmplx.Phase(num)
	if !AllClose(Scale(cmplx.Exp(complex(0, phase)), recon), k, 1e-6) {
		return nil, nil, 0, fmt.Errorf("%w: factor is not a tensor product", ErrWeylFailed)
	}
	return l, r, phase, nil
}

func block(k *mat.CDense, bi, bj int) *mat.CDense {
	out := mat.NewCDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out.Set(i, j, k.At(bi*2+i, bj*2+j))
		}
	}
	return out
}
