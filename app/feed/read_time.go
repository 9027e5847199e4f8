package feed

import "strings"

const wordsPerMinute = 200

// EstimateReadTime returns the reading time of text in whole minutes, at least 1.
func EstimateReadTime(text string) int {
	words := len(strings.Fields(text))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return max(1, minutes)
}
