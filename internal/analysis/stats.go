package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// DPrime is z(hit rate) - z(false-alarm rate) on log-linear corrected rates.
// Invalid and omitted responses do not enter either rate.
func DPrime(c domain.TestCounts) float64 {
	hit, fa := c.CorrectedRates()
	return distuv.UnitNormal.Quantile(hit) - distuv.UnitNormal.Quantile(fa)
}

// Describe returns the mean and sample standard deviation of xs. The SD of a
// single value is zero; an empty input yields the zero Stat.
func Describe(xs []float64) Stat {
	switch len(xs) {
	case 0:
		return Stat{}
	case 1:
		return Stat{N: 1, Mean: xs[0]}
	}
	mean, sd := stat.MeanStdDev(xs, nil)
	if math.IsNaN(sd) {
		sd = 0
	}
	return Stat{N: len(xs), Mean: mean, SD: sd}
}
