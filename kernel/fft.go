package kernel

import (
	"fmt"
	"math/bits"
)

// FFT is the convolution kernel: Clifford-style pattern matching with
// wildcard bytes, evaluated by number-theoretic transforms.
//
// For each alignment i the kernel evaluates
//
//	sum_j active(p_j) * (t_{i+j} - p_j)^2
//	  = sum_j active*t^2 - 2*sum_j active*p*t + sum_j active*p^2
//
// where active is 0 at wildcard positions. The two text-dependent sums are
// cross-correlations of the text with the reversed pattern, computed as
// pointwise products in the transform domain; the pattern-only sum is a
// prefix table. A zero combined sum (in the field) marks a match, so a
// wildcard position constrains nothing.
//
// Three prime fields are available, chosen by pattern size; a pattern too
// large for the biggest field is a build error. Texts longer than one
// transform block are processed in overlapping blocks of n+1-m bytes.
//
// The transform scratch buffers are reused across calls, so a single FFT
// state must not be shared between goroutines. Build a state per worker
// instead.
type FFT struct {
	// Wildcard is the byte that matches any single text byte. Zero
	// disables wildcard handling, making every pattern byte active.
	Wildcard byte
}

// Name implements Searcher.
func (FFT) Name() string { return "fft" }

// Build implements Searcher. It fails for empty patterns and for patterns
// whose transform would exceed the largest supported field.
func (f FFT) Build(pattern []byte) (State, error) {
	m := len(pattern)
	required := m * 3
	if required <= 1 {
		return nil, &Error{Kind: BadInput, Message: "fft: pattern too small"}
	}

	log2n := log2Ceil(uint64(required))
	field, err := fieldFor(log2n)
	if err != nil {
		return nil, err
	}

	return newFFTState(field, log2n, pattern, f.Wildcard), nil
}

func log2Ceil(v uint64) uint {
	return uint(64 - bits.LeadingZeros64(v-1))
}

// modField is modular arithmetic over one transform field. All values are
// kept reduced below the modulus.
type modField interface {
	Name() string
	Modulus() uint64
	Add(a, b uint64) uint64
	Sub(a, b uint64) uint64
	Mul(a, b uint64) uint64
	Reduce(v uint64) uint64
	Omega() uint64
	OmegaInv() uint64
	// OrderLog2 is k where omega has multiplicative order 2^k; it is
	// also the largest supported transform size exponent.
	OrderLog2() uint
}

// fieldFor picks the smallest field whose root order covers a transform of
// 2^log2n points.
func fieldFor(log2n uint) (modField, error) {
	switch {
	case log2n <= fermat32Order:
		return fermat32Field{}, nil
	case log2n <= ntt27Order:
		return ntt27Field{}, nil
	case log2n <= ntt57Order:
		return ntt57Field{}, nil
	default:
		return nil, &Error{
			Kind:    BadInput,
			Message: fmt.Sprintf("fft: pattern too large for any field (need 2^%d points)", log2n),
		}
	}
}

// fermat32Field works modulo the Fermat number 2^32+1, where 2 is a root
// of unity of order 64. Reduction folds the high word: 2^32 = -1.
type fermat32Field struct{}

const (
	fermat32Mod   = 1<<32 + 1
	fermat32Order = 6
)

func (fermat32Field) Name() string    { return "fermat32" }
func (fermat32Field) Modulus() uint64 { return fermat32Mod }

func (fermat32Field) Reduce(v uint64) uint64 {
	a := v & 0xffffffff
	b := v >> 32
	if a >= b {
		return a - b
	}
	return a + fermat32Mod - b
}

func (f fermat32Field) Add(a, b uint64) uint64 { return f.Reduce(a + b) }
func (f fermat32Field) Sub(a, b uint64) uint64 { return f.Reduce(a + fermat32Mod - b) }

func (f fermat32Field) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	// 2^64 = 1 in this field, so the high word folds in additively.
	return f.Add(f.Reduce(lo), hi)
}

func (fermat32Field) Omega() uint64    { return 2 }
func (fermat32Field) OmegaInv() uint64 { return 2147483649 } // 2^31+1: 2*(2^31+1) = 2^32+2 = 1
func (fermat32Field) OrderLog2() uint  { return fermat32Order }

// ntt27Field works modulo the NTT prime 2013265921 = 15*2^27+1.
type ntt27Field struct{}

const (
	ntt27Mod   = 2013265921
	ntt27Order = 27
)

func (ntt27Field) Name() string           { return "ntt27" }
func (ntt27Field) Modulus() uint64        { return ntt27Mod }
func (ntt27Field) Reduce(v uint64) uint64 { return v % ntt27Mod }
func (ntt27Field) Add(a, b uint64) uint64 { return (a + b) % ntt27Mod }
func (ntt27Field) Sub(a, b uint64) uint64 { return (a + ntt27Mod - b) % ntt27Mod }
func (ntt27Field) Mul(a, b uint64) uint64 { return a * b % ntt27Mod }
func (ntt27Field) Omega() uint64          { return 1985266761 }
func (ntt27Field) OmegaInv() uint64       { return 1885204058 }
func (ntt27Field) OrderLog2() uint        { return ntt27Order }

// ntt57Field works modulo the NTT prime 4179340454199820289 = 29*2^57+1
// with primitive root 3; omega = 3^29 has order 2^57. Products are reduced
// through a 128-bit divide.
type ntt57Field struct{}

const (
	ntt57Mod   = 4179340454199820289
	ntt57Order = 57
	ntt57Omega = 68630377364883 // 3^29
)

// ntt57OmegaInv is computed once at package init; the modulus is prime, so
// Fermat inversion applies.
var ntt57OmegaInv = powMod(ntt57Field{}, ntt57Omega, ntt57Mod-2)

func (ntt57Field) Name() string           { return "ntt57" }
func (ntt57Field) Modulus() uint64        { return ntt57Mod }
func (ntt57Field) Reduce(v uint64) uint64 { return v % ntt57Mod }
func (ntt57Field) Add(a, b uint64) uint64 { return (a + b) % ntt57Mod }
func (ntt57Field) Sub(a, b uint64) uint64 { return (a + ntt57Mod - b) % ntt57Mod }

func (ntt57Field) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, ntt57Mod)
	return rem
}

func (ntt57Field) Omega() uint64    { return ntt57Omega }
func (ntt57Field) OmegaInv() uint64 { return ntt57OmegaInv }
func (ntt57Field) OrderLog2() uint  { return ntt57Order }

func powMod(f modField, base, exp uint64) uint64 {
	res := uint64(1)
	b := f.Reduce(base)
	for exp != 0 {
		if exp&1 == 1 {
			res = f.Mul(res, b)
		}
		exp >>= 1
		b = f.Mul(b, b)
	}
	return res
}

// nttPlan holds the twiddle factors for one transform size.
type nttPlan struct {
	f         modField
	log2n     uint
	n         int
	twiddles  []uint64
	itwiddles []uint64
}

func newNTTPlan(f modField, log2n uint) *nttPlan {
	n := 1 << log2n
	// phi is a primitive n-th root: omega^(order/n).
	shift := f.OrderLog2() - log2n
	phi := powMod(f, f.Omega(), 1<<shift)
	iphi := powMod(f, f.OmegaInv(), 1<<shift)

	return &nttPlan{
		f:         f,
		log2n:     log2n,
		n:         n,
		twiddles:  rootPowers(f, n, phi),
		itwiddles: rootPowers(f, n, iphi),
	}
}

func rootPowers(f modField, n int, t uint64) []uint64 {
	out := make([]uint64, n)
	out[0] = 1
	for i := 1; i < n; i++ {
		out[i] = f.Mul(out[i-1], t)
	}
	return out
}

// fft runs the decimation-in-frequency transform in place.
func (p *nttPlan) fft(x []uint64) {
	f := p.f
	for jp := uint(0); jp < p.log2n; jp++ {
		j := p.log2n - jp - 1
		s := p.log2n - j - 1
		l := 1 << j

		for i := 0; i < 1<<s; i++ {
			base := i << (j + 1)
			t := x[base : base+(l<<1)]
			for k := 0; k < l; k++ {
				w := p.twiddles[(k<<s)%p.n]
				a, b := t[k], t[k+l]
				t[k] = f.Add(a, b)
				t[k+l] = f.Mul(f.Sub(a, b), w)
			}
		}
	}
}

// ifft runs the decimation-in-time inverse without the final 1/n scaling;
// the pattern prefix table carries the matching factor of n instead.
func (p *nttPlan) ifft(x []uint64) {
	f := p.f
	for j := uint(0); j < p.log2n; j++ {
		s := p.log2n - j - 1
		l := 1 << j

		for i := 0; i < 1<<s; i++ {
			base := i << (j + 1)
			t := x[base : base+(l<<1)]
			for k := 0; k < l; k++ {
				w := p.itwiddles[(k<<s)%p.n]
				a := t[k]
				b := f.Mul(t[k+l], w)
				t[k] = f.Add(a, b)
				t[k+l] = f.Sub(a, b)
			}
		}
	}
}

type fftState struct {
	m        int
	n        int
	plan     *nttPlan
	wildcard byte

	// p0[i] = n * sum of active*p^2 over the first i pattern bytes.
	p0 []uint64
	// p1, p2: transforms of the reversed active mask and active*p vectors.
	p1 []uint64
	p2 []uint64
	// t1, t2: per-block scratch, overwritten by every compute call.
	t1 []uint64
	t2 []uint64
}

func newFFTState(f modField, log2n uint, pattern []byte, wildcard byte) *fftState {
	plan := newNTTPlan(f, log2n)
	n := plan.n
	m := len(pattern)

	st := &fftState{
		m:        m,
		n:        n,
		plan:     plan,
		wildcard: wildcard,
		p0:       make([]uint64, n),
		p1:       make([]uint64, n),
		p2:       make([]uint64, n),
		t1:       make([]uint64, n),
		t2:       make([]uint64, n),
	}

	for i := 0; i < m; i++ {
		c := uint64(pattern[i])
		var active uint64
		if wildcard == 0 || pattern[i] != wildcard {
			active = 1
		}
		term := f.Reduce(f.Mul(f.Mul(c, c), active*uint64(n)))
		st.p0[i+1] = f.Add(st.p0[i], term)
	}

	for i := 0; i < m; i++ {
		c := uint64(pattern[m-i-1])
		var active uint64
		if wildcard == 0 || pattern[m-i-1] != wildcard {
			active = 1
		}
		st.p1[i] = active
		st.p2[i] = f.Reduce(c * active)
	}

	plan.fft(st.p1)
	plan.fft(st.p2)
	return st
}

// compute fills t1/t2 with the two cross-correlations for one text block.
func (s *fftState) compute(text []byte) {
	f := s.plan.f
	for i, b := range text {
		v := uint64(b)
		s.t1[i] = v * v
		s.t2[i] = v
	}
	for i := len(text); i < s.n; i++ {
		s.t1[i] = 0
		s.t2[i] = 0
	}

	s.plan.fft(s.t1)
	s.plan.fft(s.t2)
	for i := 0; i < s.n; i++ {
		s.t1[i] = f.Mul(s.t1[i], s.p1[i])
		s.t2[i] = f.Mul(s.t2[i], s.p2[i])
	}
	s.plan.ifft(s.t1)
	s.plan.ifft(s.t2)
}

func (s *fftState) FindFirst(text []byte) int {
	if s.m == 0 {
		return 0
	}
	if len(text) < s.m {
		return -1
	}

	f := s.plan.f
	mod := f.Modulus()

	ts := s.n + 1 - s.m
	matchStart := s.m - 1
	matchable := ts - s.m + 1

	offset := 0
	limit := len(text) - s.m + 1
	for offset < limit {
		end := offset + ts
		if end > len(text) {
			end = len(text)
		}
		block := text[offset:end]
		s.compute(block)

		remaining := len(block) - s.m + 1
		maxJ := matchable
		if remaining < maxJ {
			maxJ = remaining
		}

		for j := 0; j < maxJ; j++ {
			idx := j + matchStart
			// lhs = t1 - 2*t2 lifted by 2*mod to stay non-negative.
			lhs := f.Reduce(s.t1[idx] + 2*mod - 2*s.t2[idx])

			p0Idx := len(block) - j
			if p0Idx > s.m {
				p0Idx = s.m
			}
			rhs := f.Reduce(mod - s.p0[p0Idx])

			if lhs == rhs {
				return offset + j
			}
		}

		offset += matchable
	}
	return -1
}
