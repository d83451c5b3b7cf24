package domain

import (
	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
)

// TradablePairs returns the pairs listed on both markets, without
// duplicates, in the order they first appear in first.
func TradablePairs(first, second []marketDomain.Pair) []marketDomain.Pair {
	inSecond := make(map[marketDomain.Pair]struct{}, len(second))
	for _, p := range second {
		inSecond[p] = struct{}{}
	}

	seen := make(map[marketDomain.Pair]struct{}, len(first))
	out := make([]marketDomain.Pair, 0, min(len(first), len(second)))
	for _, p := range first {
		if _, ok := inSecond[p]; !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
