package signatures

import (
	"math"
)

// CalculateEntropy calculates Shannon entropy of a string
// Returns value between 0 (uniform) and 8 (maximum randomness for bytes)
func CalculateEntropy(data string) float64 {
	if len(data) == 0 {
		return 0
	}

	var freq [256]int
	for i := 0; i < len(data); i++ {
		freq[data[i]]++
	}

	length := float64(len(data))
	var entropy float64
	for _, count := range freq {
		if count > 0 {
			p := float64(count) / length
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}
