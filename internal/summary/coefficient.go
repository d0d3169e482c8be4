package summary

import (
	"fmt"
	"math"
)

// Kind names one dispersion coefficient.
type Kind string

const (
	GD  Kind = "GD"
	GDD Kind = "GDD"
	TOD Kind = "TOD"
	FOD Kind = "FOD"
	QOD Kind = "QOD"
	SOD Kind = "SOD"
)

// Kinds lists the coefficients in report order.
var Kinds = []Kind{GD, GDD, TOD, FOD, QOD, SOD}

// Unit returns the physical unit of the coefficient.
func (k Kind) Unit() string {
	switch k {
	case GD:
		return "fs"
	case GDD:
		return "fs^2"
	case TOD:
		return "fs^3"
	case FOD:
		return "fs^4"
	case QOD:
		return "fs^5"
	case SOD:
		return "fs^6"
	}
	return ""
}

// Coefficient collects the samples of one kind across result entries.
type Coefficient struct {
	Kind   Kind
	values []float64
}

// NewCoefficient returns an empty collection for k.
func NewCoefficient(k Kind) *Coefficient {
	return &Coefficient{Kind: k}
}

// Push appends v. For GD every sample after the first takes the sign of
// the first one; the runtime does not report a consistent sign for the
// group delay between runs.
func (c *Coefficient) Push(v float64) {
	if c.Kind == GD && len(c.values) > 0 {
		v = math.Copysign(v, c.values[0])
	}
	c.values = append(c.values, v)
}

// Len returns the number of samples.
func (c *Coefficient) Len() int { return len(c.values) }

// Values returns a copy of the samples in push order.
func (c *Coefficient) Values() []float64 {
	return append([]float64(nil), c.values...)
}

// Mean is not defined for GD or for an empty collection.
func (c *Coefficient) Mean() (float64, bool) {
	if c.Kind == GD || len(c.values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range c.values {
		sum += v
	}
	return sum / float64(len(c.values)), true
}

// Std returns the population standard deviation. Like Mean it is not
// defined for GD.
func (c *Coefficient) Std() (float64, bool) {
	mean, ok := c.Mean()
	if !ok {
		return 0, false
	}
	var sq float64
	for _, v := range c.values {
		d := mean - v
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(c.values))), true
}

func (c *Coefficient) Min() float64 {
	m := math.Inf(1)
	for _, v := range c.values {
		m = math.Min(m, v)
	}
	return m
}

func (c *Coefficient) Max() float64 {
	m := math.Inf(-1)
	for _, v := range c.values {
		m = math.Max(m, v)
	}
	return m
}

// Omitted reports whether every sample is zero (or there are none).
func (c *Coefficient) Omitted() bool {
	for _, v := range c.values {
		if v != 0 {
			return false
		}
	}
	return true
}

func (c *Coefficient) String() string {
	switch {
	case c.Omitted():
		return fmt.Sprintf("%s: omitted..", c.Kind)
	case c.Kind == GD:
		return fmt.Sprintf("%s ranging from %.5f to %.5f %s (might be inaccurate due to sign conversions)",
			c.Kind, c.Min(), c.Max(), c.Kind.Unit())
	default:
		mean, _ := c.Mean()
		std, _ := c.Std()
		return fmt.Sprintf("%s: mean = %12.5f | std = %12.5f | min = %12.5f | max = %12.5f  %s",
			c.Kind, mean, std, c.Min(), c.Max(), c.Kind.Unit())
	}
}
