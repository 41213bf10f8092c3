package series

// Polynomial parts in microarcseconds, IERS Conventions 2010 eq. 5.16 and
// table 5.2d.
var (
	PolynomialX    = []float64{-16617.0, 2004191898.0, -429782.9, -198618.34, 7.578, 5.9285}
	PolynomialY    = []float64{-6951.0, -25896.0, -22407274.7, 1900.59, 1112.526, 0.1358}
	PolynomialSXY2 = []float64{94.0, 3808.65, -122.68, -72574.11, 27.98, 15.62}
)

// shortTerm is a term of the s+XY/2 series, which only involves the five
// luni-solar arguments plus Venus, Earth and general precession.
type shortTerm struct {
	m        [8]int
	sin, cos float64
}

// shortSlots maps shortTerm multiplier positions onto Arguments indices.
var shortSlots = [8]int{ArgL, ArgLPrime, ArgF, ArgD, ArgOmega, ArgVenus, ArgEarth, ArgPrecession}

func expandShort(src []shortTerm) []Term {
	out := make([]Term, len(src))
	for i, s := range src {
		out[i].Sin = s.sin
		out[i].Cos = s.cos
		for k, m := range s.m {
			out[i].Multipliers[shortSlots[k]] = m
		}
	}
	return out
}

// Periodic terms of s+XY/2 (IERS Conventions 2010 table 5.2d).
var sxy2Terms = [][]shortTerm{
	{
		{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, -2640.73, 0.39},
		{[8]int{0, 0, 0, 0, 2, 0, 0, 0}, -63.53, 0.02},
		{[8]int{0, 0, 2, -2, 3, 0, 0, 0}, -11.75, -0.01},
		{[8]int{0, 0, 2, -2, 1, 0, 0, 0}, -11.21, -0.01},
		{[8]int{0, 0, 2, -2, 2, 0, 0, 0}, 4.57, 0.00},
		{[8]int{0, 0, 2, 0, 3, 0, 0, 0}, -2.02, 0.00},
		{[8]int{0, 0, 2, 0, 1, 0, 0, 0}, -1.98, 0.00},
		{[8]int{0, 0, 0, 0, 3, 0, 0, 0}, 1.72, 0.00},
		{[8]int{0, 1, 0, 0, 1, 0, 0, 0}, 1.41, 0.01},
		{[8]int{0, 1, 0, 0, -1, 0, 0, 0}, 1.26, 0.01},

		{[8]int{1, 0, 0, 0, -1, 0, 0, 0}, 0.63, 0.00},
		{[8]int{1, 0, 0, 0, 1, 0, 0, 0}, 0.63, 0.00},
		{[8]int{0, 1, 2, -2, 3, 0, 0, 0}, -0.46, 0.00},
		{[8]int{0, 1, 2, -2, 1, 0, 0, 0}, -0.45, 0.00},
		{[8]int{0, 0, 4, -4, 4, 0, 0, 0}, -0.36, 0.00},
		{[8]int{0, 0, 1, -1, 1, -8, 12, 0}, 0.24, 0.12},
		{[8]int{0, 0, 2, 0, 0, 0, 0, 0}, -0.32, 0.00},
		{[8]int{0, 0, 2, 0, 2, 0, 0, 0}, -0.28, 0.00},
		{[8]int{1, 0, 2, 0, 3, 0, 0, 0}, -0.27, 0.00},
		{[8]int{1, 0, 2, 0, 1, 0, 0, 0}, -0.26, 0.00},

		{[8]int{0, 0, 2, -2, 0, 0, 0, 0}, 0.21, 0.00},
		{[8]int{0, 1, -2, 2, -3, 0, 0, 0}, -0.19, 0.00},
		{[8]int{0, 1, -2, 2, -1, 0, 0, 0}, -0.18, 0.00},
		{[8]int{0, 0, 0, 0, 0, 8, -13, -1}, 0.10, -0.05},
		{[8]int{0, 0, 0, 2, 0, 0, 0, 0}, -0.15, 0.00},
		{[8]int{2, 0, -2, 0, -1, 0, 0, 0}, 0.14, 0.00},
		{[8]int{0, 1, 2, -2, 2, 0, 0, 0}, 0.14, 0.00},
		{[8]int{1, 0, 0, -2, 1, 0, 0, 0}, -0.14, 0.00},
		{[8]int{1, 0, 0, -2, -1, 0, 0, 0}, -0.14, 0.00},
		{[8]int{0, 0, 4, -2, 4, 0, 0, 0}, -0.13, 0.00},

		{[8]int{0, 0, 2, -2, 4, 0, 0, 0}, 0.11, 0.00},
		{[8]int{1, 0, -2, 0, -3, 0, 0, 0}, -0.11, 0.00},
		{[8]int{1, 0, -2, 0, -1, 0, 0, 0}, -0.11, 0.00},
	},
	{
		{[8]int{0, 0, 0, 0, 2, 0, 0, 0}, -0.07, 3.57},
		{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, 1.73, -0.03},
		{[8]int{0, 0, 2, -2, 3, 0, 0, 0}, 0.00, 0.48},
	},
	{
		{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, 743.52, -0.17},
		{[8]int{0, 0, 2, -2, 2, 0, 0, 0}, 56.91, 0.06},
		{[8]int{0, 0, 2, 0, 2, 0, 0, 0}, 9.84, -0.01},
		{[8]int{0, 0, 0, 0, 2, 0, 0, 0}, -8.85, 0.01},
		{[8]int{0, 1, 0, 0, 0, 0, 0, 0}, -6.38, -0.05},
		{[8]int{1, 0, 0, 0, 0, 0, 0, 0}, -3.07, 0.00},
		{[8]int{0, 1, 2, -2, 2, 0, 0, 0}, 2.23, 0.00},
		{[8]int{0, 0, 2, 0, 1, 0, 0, 0}, 1.67, 0.00},
		{[8]int{1, 0, 2, 0, 2, 0, 0, 0}, 1.30, 0.00},
		{[8]int{0, 1, -2, 2, -2, 0, 0, 0}, 0.93, 0.00},

		{[8]int{1, 0, 0, -2, 0, 0, 0, 0}, 0.68, 0.00},
		{[8]int{0, 0, 2, -2, 1, 0, 0, 0}, -0.55, 0.00},
		{[8]int{1, 0, -2, 0, -2, 0, 0, 0}, 0.53, 0.00},
		{[8]int{0, 0, 0, 2, 0, 0, 0, 0}, -0.27, 0.00},
		{[8]int{1, 0, 0, 0, 1, 0, 0, 0}, -0.27, 0.00},
		{[8]int{1, 0, -2, -2, -2, 0, 0, 0}, -0.26, 0.00},
		{[8]int{1, 0, 0, 0, -1, 0, 0, 0}, -0.25, 0.00},
		{[8]int{1, 0, 2, 0, 1, 0, 0, 0}, 0.22, 0.00},
		{[8]int{2, 0, 0, -2, 0, 0, 0, 0}, -0.21, 0.00},
		{[8]int{2, 0, -2, 0, -1, 0, 0, 0}, 0.20, 0.00},

		{[8]int{0, 0, 2, 2, 2, 0, 0, 0}, 0.17, 0.00},
		{[8]int{2, 0, 2, 0, 2, 0, 0, 0}, 0.13, 0.00},
		{[8]int{2, 0, 0, 0, 0, 0, 0, 0}, -0.13, 0.00},
		{[8]int{1, 0, 2, -2, 2, 0, 0, 0}, -0.12, 0.00},
		{[8]int{0, 0, 2, 0, 0, 0, 0, 0}, -0.11, 0.00},
	},
	{
		{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, 0.30, -23.42},
		{[8]int{0, 0, 2, -2, 2, 0, 0, 0}, -0.03, -1.46},
		{[8]int{0, 0, 2, 0, 2, 0, 0, 0}, -0.01, -0.25},
		{[8]int{0, 0, 0, 0, 2, 0, 0, 0}, 0.00, 0.23},
	},
	{
		{[8]int{0, 0, 0, 0, 1, 0, 0, 0}, -0.26, -0.01},
	},
}

// SXY2 returns the complete s+XY/2 expansion.
func SXY2() *Expansion {
	orders := make([][]Term, len(sxy2Terms))
	for j, terms := range sxy2Terms {
		orders[j] = expandShort(terms)
	}
	return &Expansion{
		Name:       "s+XY/2",
		Polynomial: append([]float64(nil), PolynomialSXY2...),
		Orders:     orders,
	}
}

// SecularX returns X with its polynomial part only.
func SecularX() *Expansion {
	return &Expansion{Name: "X", Polynomial: append([]float64(nil), PolynomialX...)}
}

// SecularY returns Y with its polynomial part only.
func SecularY() *Expansion {
	return &Expansion{Name: "Y", Polynomial: append([]float64(nil), PolynomialY...)}
}
