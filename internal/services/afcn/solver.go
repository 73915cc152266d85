package afcn

import (
	"fmt"
	"math"
)

const (
	lowerBound = 1e-10

	brentXTol    = 2e-12
	brentRTol    = 4 * 2.220446049250313e-16
	brentMaxIter = 100
)

// Bounds is the price interval the agent is willing to trade in.
type Bounds struct {
	MinBuy       float64
	Satisfaction float64
	MaxSell      float64
}

// Brent finds a root of f in [a, b]. f(a) and f(b) must differ in sign.
func Brent(f func(float64) float64, a, b float64) (float64, error) {
	xpre, xcur := a, b
	fpre, fcur := f(xpre), f(xcur)
	if !IsFinite(fpre) || !IsFinite(fcur) {
		return 0, fmt.Errorf("%w: non-finite value at bracket [%g, %g]", ErrNumericalConvergence, a, b)
	}
	if fpre == 0 {
		return xpre, nil
	}
	if fcur == 0 {
		return xcur, nil
	}
	if math.Signbit(fpre) == math.Signbit(fcur) {
		return 0, fmt.Errorf("%w: no sign change in [%g, %g]", ErrNumericalConvergence, a, b)
	}

	var xblk, fblk, spre, scur float64
	for i := 0; i < brentMaxIter; i++ {
		if fpre != 0 && fcur != 0 && math.Signbit(fpre) != math.Signbit(fcur) {
			xblk, fblk = xpre, fpre
			spre = xcur - xpre
			scur = spre
		}
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur, xblk = xcur, xblk, xcur
			fpre, fcur, fblk = fcur, fblk, fcur
		}

		delta := (brentXTol + brentRTol*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			return xcur, nil
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				// secant
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				// inverse quadratic
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				spre, scur = scur, stry
			} else {
				spre, scur = sbis, sbis
			}
		} else {
			spre, scur = sbis, sbis
		}

		xpre, fpre = xcur, fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else if sbis > 0 {
			xcur += delta
		} else {
			xcur -= delta
		}
		fcur = f(xcur)
		if !IsFinite(fcur) {
			return 0, fmt.Errorf("%w: non-finite value at %g", ErrNumericalConvergence, xcur)
		}
	}
	return 0, fmt.Errorf("%w: no convergence after %d iterations", ErrNumericalConvergence, brentMaxIter)
}

// SolveBounds finds the satisfaction price (demand equals the current position)
// and the budget-constrained minimum buy price. The maximum sell price is the
// expected price itself, where demand is zero.
func SolveBounds(d DemandModel, position int, cash float64) (Bounds, error) {
	satisfaction, err := Brent(func(p float64) float64 {
		return d.AdditionalDemand(p, position)
	}, lowerBound, d.ExpectedPrice)
	if err != nil {
		return Bounds{}, fmt.Errorf("satisfaction price: %w", err)
	}
	if satisfaction <= lowerBound {
		return Bounds{}, fmt.Errorf("%w: satisfaction price collapsed to lower bound", ErrNumericalConvergence)
	}

	minBuy, err := Brent(func(p float64) float64 {
		return d.RemainingCash(p, position, cash)
	}, lowerBound, satisfaction)
	if err != nil {
		return Bounds{}, fmt.Errorf("min buy price: %w", err)
	}

	b := Bounds{MinBuy: minBuy, Satisfaction: satisfaction, MaxSell: d.ExpectedPrice}
	if !(b.MinBuy <= b.Satisfaction && b.Satisfaction <= b.MaxSell) {
		return Bounds{}, fmt.Errorf("%w: bounds out of order min=%g sat=%g max=%g",
			ErrNumericalConvergence, b.MinBuy, b.Satisfaction, b.MaxSell)
	}
	return b, nil
}
