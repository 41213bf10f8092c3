package astro

import "math"

// R1 returns the passive rotation by phi about the x axis.
func R1(phi float64) Matrix {
	s, c := math.Sincos(phi)
	return Matrix{
		{1, 0, 0},
		{0, c, s},
		{0, -s, c},
	}
}

// R2 returns the passive rotation by theta about the y axis.
func R2(theta float64) Matrix {
	s, c := math.Sincos(theta)
	return Matrix{
		{c, 0, -s},
		{0, 1, 0},
		{s, 0, c},
	}
}

// R3 returns the passive rotation by psi about the z axis.
func R3(psi float64) Matrix {
	s, c := math.Sincos(psi)
	return Matrix{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}
