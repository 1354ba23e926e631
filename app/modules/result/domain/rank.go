package resultdomain

import "slices"

// RankedResult is a result placed within its round.
type RankedResult struct {
	Result
	Ranking  int
	Proceeds bool
}

// CompareForRanking orders two results of a round: by average first when the
// format has one, then by best single.
func CompareForRanking(a, b Result, format RoundFormat, ev Event) int {
	if format.HasAverage() {
		if c := CompareAverage(a.Average, b.Average, ev); c != 0 {
			return c
		}
	}
	return CompareSingle(a.Best, b.Best, ev)
}

// Rank orders the results of one round and assigns competition rankings
// (1, 2, 2, 4). Proceeds is only set when rule is non-nil; ties with the last
// advancing ranking advance too, and nobody advances without a successful attempt.
func Rank(results []Result, format RoundFormat, ev Event, rule *ProceedRule) []RankedResult {
	ranked := make([]RankedResult, len(results))
	for i, r := range results {
		ranked[i] = RankedResult{Result: r}
	}
	slices.SortStableFunc(ranked, func(a, b RankedResult) int {
		return CompareForRanking(a.Result, b.Result, format, ev)
	})

	for i := range ranked {
		if i > 0 && CompareForRanking(ranked[i-1].Result, ranked[i].Result, format, ev) == 0 {
			ranked[i].Ranking = ranked[i-1].Ranking
			continue
		}
		ranked[i].Ranking = i + 1
	}

	if rule != nil {
		applyProceeds(ranked, *rule)
	}
	return ranked
}

func applyProceeds(ranked []RankedResult, rule ProceedRule) {
	limit := rule.Limit(len(ranked))
	if limit == 0 {
		return
	}
	lastRanking := ranked[limit-1].Ranking
	for i := range ranked {
		if ranked[i].Ranking > lastRanking {
			break
		}
		ranked[i].Proceeds = ranked[i].Best.IsSuccess()
	}
}
