package test

import (
	"math/rand/v2"
	"slices"
)

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomSecret returns a throwaway signing secret with a length in [minLen, maxLen].
func RandomSecret(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = secretAlphabet[rand.IntN(len(secretAlphabet))]
	}
	return string(buf)
}

// RandomVehicleIDs returns n distinct positive vehicle IDs in ascending order.
func RandomVehicleIDs(n int) []int64 {
	seen := make(map[int64]struct{}, n)
	ids := make([]int64, 0, n)
	for len(ids) < n {
		id := rand.Int64N(1_000_000) + 1
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
