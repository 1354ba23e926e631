package resultdomain

import "cmp"

// attemptClass orders the attempt encoding from best to worst. Real values
// are ordered among themselves by the event's direction.
func attemptClass(a Attempt) int {
	switch {
	case a.IsReal():
		return 0
	case a == Unknown:
		return 1
	case a == DNF:
		return 2
	case a == DNS:
		return 3
	default:
		return 4
	}
}

func compareAttempts(a, b Attempt, dir Direction) int {
	ca, cb := attemptClass(a), attemptClass(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}
	if ca != 0 {
		return 0
	}
	if dir == HigherIsBetter {
		return cmp.Compare(b, a)
	}
	return cmp.Compare(a, b)
}

// CompareSingle orders two single attempts for ev: -1 when a is better, 1 when
// b is better and 0 when they are equal.
func CompareSingle(a, b Attempt, ev Event) int {
	return compareAttempts(a, b, ev.Direction())
}

// CompareAverage orders two aggregated averages for ev. A zero average (not
// applicable) is worse than any DNF average.
func CompareAverage(a, b Attempt, ev Event) int {
	return compareAttempts(a, b, ev.Direction())
}

// BetterOf returns the better of two attempts for ev, keeping a on ties.
func BetterOf(a, b Attempt, ev Event) Attempt {
	if CompareSingle(b, a, ev) < 0 {
		return b
	}
	return a
}
