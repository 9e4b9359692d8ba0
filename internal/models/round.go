package models

import "strconv"

// RoundTo rounds v to the given number of decimals using the exact binary
// value of v, with exact ties going to the even digit. 2.675 rounds to 2.67
// and 0.125 to 0.12.
func RoundTo(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
