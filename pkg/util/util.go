package util

import (
	"math"
	"strconv"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// FormatFloat prints val with the shortest representation after rounding to precision digits.
func FormatFloat(val float64, precision uint) string {
	return strconv.FormatFloat(RoundFloat(val, precision), 'f', -1, 64)
}

func ReverseG[T any](arr []T) {
	for i, j := 0, len(arr)-1; i < j; i, j = i+1, j-1 {
		arr[i], arr[j] = arr[j], arr[i]
	}
}
