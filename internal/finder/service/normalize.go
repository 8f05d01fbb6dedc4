package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"connector-finder/internal/finder/model"
)

// 1,05 → 1.05, drop spaces that spreadsheets put into numbers
var capacityRepl = strings.NewReplacer(
	",", ".",
	"\u00A0", "", "\u202F", "", "\u2009", "", " ", "",
	"\u2212", "-", // unicode minus
	"\u2013", "-", // en dash used as a placeholder
)

// plain decimal with an optional exponent; strconv alone also takes hex
// floats and "inf"
var rxDecimal = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// ParseCapacity turns a raw mRd/vRd cell into a non-negative float.
//
// Steps, in order: decimal comma → point, drop "±", resolve the "-"
// placeholder according to policy, drop a sign prefix, parse.
// A cell without a numeral fails with model.ErrNormalization.
func ParseCapacity(raw string, policy model.ZeroPlaceholderPolicy) (float64, error) {
	s := capacityRepl.Replace(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "±", "")

	if s != "" && strings.Trim(s, "-") == "" {
		if policy == model.PlaceholderZero {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %q has no numeral", model.ErrNormalization, raw)
	}
	s = strings.TrimLeft(s, "-+")
	if s == "" {
		return 0, fmt.Errorf("%w: empty cell", model.ErrNormalization)
	}

	if !rxDecimal.MatchString(s) {
		return 0, fmt.Errorf("%w: %q is not a decimal", model.ErrNormalization, raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", model.ErrNormalization, raw)
	}
	return f, nil
}
