package pe

import (
	"math"
	"strconv"
)

func countValue(group map[string]int, value string) {
	group[value]++
}

func languageName(language uint32) string {
	if language == 0 {
		return "neutral"
	}
	return strconv.Itoa(int(language))
}

func entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	result := 0.0
	length := float64(len(data))
	for _, count := range counts {
		if count == 0 {
			continue
		}
		frequency := float64(count) / length
		result -= frequency * math.Log2(frequency)
	}
	return math.Round(result*100) / 100
}
