// Package simhash fingerprints result pages so that a site serving the same
// listing for consecutive page numbers can be noticed.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint computes a 64-bit SimHash over tokens using FNV-64a.
// An empty token list fingerprints to 0.
func Fingerprint(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	for _, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()

		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// FingerprintTitles fingerprints a page of product titles. Each title
// contributes its words and its whole normalized form, so reordered
// listings still compare as near-identical.
func FingerprintTitles(titles []string) uint64 {
	tokens := make([]string, 0, len(titles)*8)
	for _, t := range titles {
		words := strings.Fields(strings.ToLower(t))
		if len(words) == 0 {
			continue
		}
		tokens = append(tokens, words...)
		tokens = append(tokens, strings.Join(words, "_"))
	}
	return Fingerprint(tokens)
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether a and b are within threshold bits of each other.
// Two zero fingerprints (empty pages) are never similar.
func Similar(a, b uint64, threshold int) bool {
	if a == 0 && b == 0 {
		return false
	}
	return Distance(a, b) <= threshold
}
