package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d\.\-+eE]`)

var spaceRepl = strings.NewReplacer("\u00A0", "", "\u202F", "", "\u2009", "", " ", "", "\t", "", ",", ".")

// ParseFloat reads numbers written with either decimal separator and
// thousands spaces: "1 234,50", "200.0", "197 ,00".
func ParseFloat(s string) (float64, bool) {
	s = spaceRepl.Replace(strings.TrimSpace(s))
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt is ParseFloat rounded to the nearest integer ("200", "200,0").
func ParseInt(s string) (int, bool) {
	f, ok := ParseFloat(s)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}
