// Package version provides unified mechanisms for application version tracking, update discovery, and compatibility validation.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// parse reads MAJOR[.MINOR[.PATCH]] with an optional v prefix. Build and
// pre-release suffixes are ignored.
func parse(s string) ([3]int, error) {
	var parts [3]int

	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	s, _, _ = strings.Cut(s, "+")
	s, _, _ = strings.Cut(s, "-")

	fields := strings.Split(s, ".")
	if len(fields) > 3 || fields[0] == "" {
		return parts, fmt.Errorf("invalid version %q", s)
	}

	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return parts, fmt.Errorf("invalid version %q", s)
		}
		parts[i] = n
	}
	return parts, nil
}

// Compare orders two version strings.
// Returns 1 if a > b, -1 if a < b, and 0 if equal.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range lo.Zip2(av[:], bv[:]) {
		if pair.A > pair.B {
			return 1, nil
		}

		if pair.A < pair.B {
			return -1, nil
		}
	}

	return 0, nil
}
