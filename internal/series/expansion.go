package series

import "math"

// Term is one Poisson series term in microarcseconds:
// Sin·sin(φ) + Cos·cos(φ), with φ = Σ Multipliers[k]·argument[k].
type Term struct {
	Sin, Cos    float64
	Multipliers [NumArguments]int
}

// Phase returns the term's argument for the given fundamental arguments.
func (t *Term) Phase(args *Arguments) float64 {
	var phi float64
	for k, m := range t.Multipliers {
		if m != 0 {
			phi += float64(m) * args[k]
		}
	}
	return phi
}

// Expansion is a polynomial in t plus Poisson series grouped by the power of
// t that multiplies them. Coefficients and amplitudes are in
// microarcseconds; results are in radians.
type Expansion struct {
	Name       string
	Polynomial []float64
	Orders     [][]Term
}

// Compute evaluates the expansion at t Julian centuries of TT.
func (e *Expansion) Compute(t float64) float64 {
	args := FundamentalArguments(t)
	return e.ComputeArgs(t, &args)
}

// ComputeArgs evaluates the expansion with precomputed fundamental
// arguments. Terms are summed in their published order.
func (e *Expansion) ComputeArgs(t float64, args *Arguments) float64 {
	n := len(e.Polynomial)
	if len(e.Orders) > n {
		n = len(e.Orders)
	}
	if n == 0 {
		return 0
	}

	w := make([]float64, n)
	copy(w, e.Polynomial)
	for j, terms := range e.Orders {
		for i := range terms {
			phi := terms[i].Phase(args)
			w[j] += terms[i].Sin*math.Sin(phi) + terms[i].Cos*math.Cos(phi)
		}
	}

	sum := w[n-1]
	for j := n - 2; j >= 0; j-- {
		sum = w[j] + sum*t
	}
	return sum * microArcsecToRad
}

// NumTerms returns the total number of periodic terms.
func (e *Expansion) NumTerms() int {
	n := 0
	for _, terms := range e.Orders {
		n += len(terms)
	}
	return n
}
