package utils

import "hash/fnv"

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// HashIndex maps key onto [0, n). It returns 0 when n <= 0.
func HashIndex(key string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(HashStringToUint64(key) % uint64(n))
}
