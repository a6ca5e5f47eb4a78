package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Order numbers are human readable, year scoped, and monotonically
// increasing: BM-<year>-<5 digit sequence>. The sequence resets implicitly
// every calendar year because the prefix changes.

var ErrMalformedOrderNumber = errors.New("malformed order number")

// OrderNumberPrefix returns the prefix shared by all numbers of a year.
func OrderNumberPrefix(year int) string {
	return fmt.Sprintf("BM-%d", year)
}

// NextOrderNumber derives the number following last within year. An empty
// last starts the year at sequence 1.
func NextOrderNumber(last string, year int) (string, error) {
	sequence := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if len(parts) != 3 {
			return "", ErrMalformedOrderNumber
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return "", ErrMalformedOrderNumber
		}
		sequence = n + 1
	}
	return fmt.Sprintf("%s-%05d", OrderNumberPrefix(year), sequence), nil
}
