// Package domain 一元二次方程求根
package domain

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	// ErrNotQuadratic 二次项系数为 0
	ErrNotQuadratic = errors.New("coefficient a must be non-zero")
	// ErrNonFiniteCoefficient 系数含 NaN 或 Inf
	ErrNonFiniteCoefficient = errors.New("coefficients must be finite")
)

// Roots ax²+bx+c = 0 的两个根，判别式小于 0 时为共轭复根
type Roots struct {
	X1           complex128
	X2           complex128
	Discriminant float64
}

// Real 两个根是否均为实数
func (r Roots) Real() bool {
	return r.Discriminant >= 0
}

// SolveQuadratic 求 ax²+bx+c = 0 的根。
// 系数先按 max(|a|,|b|,|c|) 缩放，b² 不会溢出；Discriminant 为未缩放的值，可能为 ±Inf。
// 实根使用 q = −½(b + sign(b)·sqrt(disc))，x1 = q/a，x2 = c/q，避免相减抵消。
func SolveQuadratic(a, b, c float64) (Roots, error) {
	coefs := [...]struct {
		name string
		v    float64
	}{{"a", a}, {"b", b}, {"c", c}}
	for _, k := range coefs {
		if math.IsNaN(k.v) || math.IsInf(k.v, 0) {
			return Roots{}, fmt.Errorf("%w: %s = %v", ErrNonFiniteCoefficient, k.name, k.v)
		}
	}
	if a == 0 {
		return Roots{}, ErrNotQuadratic
	}

	scale := max(math.Abs(a), math.Abs(b), math.Abs(c))
	a, b, c = a/scale, b/scale, c/scale

	disc := b*b - 4*a*c
	r := Roots{Discriminant: disc * scale * scale}
	if disc < 0 {
		sq := cmplx.Sqrt(complex(disc, 0))
		r.X1 = (complex(-b, 0) + sq) / complex(2*a, 0)
		r.X2 = (complex(-b, 0) - sq) / complex(2*a, 0)
		return r, nil
	}

	q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
	if q == 0 {
		// b == 0 且 c == 0
		return r, nil
	}
	r.X1 = complex(q/a, 0)
	r.X2 = complex(c/q, 0)
	return r, nil
}
