package model

import "errors"

type Vendor string

const (
	Schoeck Vendor = "schoeck"
	Leviat  Vendor = "leviat"
)

// Other returns the counterpart vendor.
func (v Vendor) Other() Vendor {
	if v == Schoeck {
		return Leviat
	}
	return Schoeck
}

func (v Vendor) Valid() bool { return v == Schoeck || v == Leviat }

// Label is the display name used in result messages.
func (v Vendor) Label() string {
	switch v {
	case Schoeck:
		return "Schöck"
	case Leviat:
		return "Leviat"
	default:
		return string(v)
	}
}

var (
	ErrNormalization   = errors.New("normalization failure")
	ErrNotFound        = errors.New("product not found")
	ErrNoMapping       = errors.New("no thickness mapping")
	ErrMalformedHeight = errors.New("malformed height")
	ErrInvalidQuery    = errors.New("invalid query")
)

// ZeroPlaceholderPolicy decides what a bare "-" in a capacity cell means.
type ZeroPlaceholderPolicy int

const (
	// PlaceholderZero reads a bare "-" as the value 0 (Schöck: no capacity).
	PlaceholderZero ZeroPlaceholderPolicy = iota
	// PlaceholderReject treats "-" only as a sign; without a numeral the cell fails.
	PlaceholderReject
)

type HeightMatchMode int

const (
	HeightWindowed HeightMatchMode = iota
	HeightExact
)

func (m HeightMatchMode) String() string {
	if m == HeightExact {
		return "exact"
	}
	return "windowed"
}

// ParseHeightMode accepts "exact" and "windowed"; anything else is windowed.
func ParseHeightMode(s string) HeightMatchMode {
	if s == "exact" {
		return HeightExact
	}
	return HeightWindowed
}

type CompareMode int

const (
	ComparePoint CompareMode = iota
	CompareOverlap
)

func (m CompareMode) String() string {
	if m == CompareOverlap {
		return "overlap"
	}
	return "point"
}

func ParseCompareMode(s string) CompareMode {
	if s == "overlap" || s == "range" {
		return CompareOverlap
	}
	return ComparePoint
}

// Record is one physical connector variant after normalization.
type Record struct {
	Vendor      Vendor  `json:"vendor"`
	ProductName string  `json:"product_name"`
	MRd         float64 `json:"mrd"`
	VRd         float64 `json:"vrd"`
	Height      int     `json:"height"`
	HeightOK    bool    `json:"-"`
	Thickness   string  `json:"thickness,omitempty"`
	MRdType     string  `json:"mrd_type,omitempty"`
	VRdType     string  `json:"vrd_type,omitempty"`
	Table       string  `json:"-"` // source sub-line table
}

// Interval is a closed range [Min, Max].
type Interval struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func NewInterval(a, b float64) Interval {
	if a > b {
		a, b = b, a
	}
	return Interval{Min: a, Max: b}
}

func (i Interval) Contains(v float64) bool { return v >= i.Min && v <= i.Max }

func (i Interval) Overlaps(o Interval) bool { return i.Min <= o.Max && i.Max >= o.Min }

// Extend widens the interval to include v.
func (i Interval) Extend(v float64) Interval {
	if v < i.Min {
		i.Min = v
	}
	if v > i.Max {
		i.Max = v
	}
	return i
}

// RangeRecord is the aggregated shape: all variants of one product_name
// collapsed into capacity ranges.
type RangeRecord struct {
	Vendor      Vendor
	ProductName string
	MRd         Interval
	VRd         Interval
	Height      int
	HeightOK    bool
	Thickness   string
	Variants    int
}

// Dataset is the immutable per-vendor collection built at startup.
type Dataset struct {
	Vendor  Vendor
	Records []Record
	Stats   LoadStats
}

type LoadStats struct {
	Read          int `json:"read"`
	FilteredOut   int `json:"filtered_out"`
	Unparsable    int `json:"unparsable"`
	Duplicates    int `json:"duplicates"`
	MissingHeight int `json:"missing_height"`
	Loaded        int `json:"loaded"`
}

// Tolerance is the per-query search window.
type Tolerance struct {
	MRdLower    float64         `json:"mrd_lower"`
	MRdUpper    float64         `json:"mrd_upper"`
	VRdLower    float64         `json:"vrd_lower"`
	VRdUpper    float64         `json:"vrd_upper"`
	HeightBelow int             `json:"height_below"`
	HeightAbove int             `json:"height_above"`
	HeightMode  HeightMatchMode `json:"-"`
	Compare     CompareMode     `json:"-"`
}

func DefaultTolerance() Tolerance {
	return Tolerance{
		MRdLower:    0.99,
		MRdUpper:    1.03,
		VRdLower:    0.99,
		VRdUpper:    1.03,
		HeightBelow: 20,
		HeightAbove: 20,
		HeightMode:  HeightWindowed,
	}
}

// Windowed sets a symmetric height offset.
func (t Tolerance) Windowed(offset int) Tolerance {
	t.HeightMode = HeightWindowed
	t.HeightBelow, t.HeightAbove = offset, offset
	return t
}

// Spec is what the resolver extracts for a model number.
type Spec struct {
	Vendor      Vendor  `json:"vendor"`
	ProductName string  `json:"product_name"`
	MRd         float64 `json:"mrd"`
	VRd         float64 `json:"vrd"`
	Height      int     `json:"height"`
	Thickness   string  `json:"thickness,omitempty"`
	MRdType     string  `json:"mrd_type,omitempty"`
	VRdType     string  `json:"vrd_type,omitempty"`
	Table       string  `json:"table,omitempty"` // source sub-line file
}

// Target is the input of the range matcher.
type Target struct {
	MRd             float64 `json:"mrd"`
	VRd             float64 `json:"vrd"`
	Height          int     `json:"height"`
	Thickness       string  `json:"thickness_key,omitempty"`
	ThicknessVendor Vendor  `json:"thickness_vendor,omitempty"`
}

func (s Spec) Target() Target {
	return Target{
		MRd:             s.MRd,
		VRd:             s.VRd,
		Height:          s.Height,
		Thickness:       s.Thickness,
		ThicknessVendor: s.Vendor,
	}
}

type Status string

const (
	StatusOK              Status = "ok"
	StatusEmpty           Status = "empty"
	StatusNoMapping       Status = "no_mapping"
	StatusNotFound        Status = "not_found"
	StatusMalformedHeight Status = "malformed_height" // product exists, no row has a usable height
	StatusInvalid         Status = "invalid"          // resolved, but the values cannot form a window
)

// VendorMatches is one vendor's side of a matcher result.
type VendorMatches struct {
	Vendor          Vendor
	Status          Status
	MappedThickness string
	Records         []Record
	Ranges          []RangeRecord // set instead of Records in overlap mode
}

func (m VendorMatches) Len() int {
	if m.Ranges != nil {
		return len(m.Ranges)
	}
	return len(m.Records)
}

type Alternatives struct {
	Target  Target
	Schoeck VendorMatches
	Leviat  VendorMatches
}

func (a Alternatives) For(v Vendor) VendorMatches {
	if v == Schoeck {
		return a.Schoeck
	}
	return a.Leviat
}

// Resolution is the per-vendor outcome of a model-number lookup.
type Resolution struct {
	Vendor Vendor
	Status Status
	Specs  []Spec
	Err    error
}

// Group is one alternatives query and the spec it was derived from
// (nil Source for explicit-spec queries).
type Group struct {
	Source       *Spec
	Alternatives Alternatives
}

// ModelSearch is the full outcome of a model-number query.
type ModelSearch struct {
	Model       string
	Resolutions []Resolution
	Groups      []Group
	Suggestions []string
}
