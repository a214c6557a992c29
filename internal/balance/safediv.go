package balance

import "golang.org/x/exp/constraints"

// SafeDivide returns num/den, or num/fallback when den is exactly zero.
// Phase CGs use fallback 1, which makes the CG of a weightless phase equal
// to its moment; callers check PhaseResult.CGDefined before trusting it.
func SafeDivide[F constraints.Float](num, den, fallback F) F {
	if den == 0 {
		return num / fallback
	}
	return num / den
}

func clamp[F constraints.Float](x, low, high F) F {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}
