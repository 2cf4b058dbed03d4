package util

// Min returns the smaller of two ints
func Min(a, b int) int {
	if b < a {
		return b
	}
	return a
}

// Max returns the larger of two ints
func Max(a, b int) int {
	if b > a {
		return b
	}
	return a
}
