package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"connector-finder/internal/finder/model"
	"connector-finder/internal/utils"
)

// number accepts a JSON number or a string in either decimal notation, so
// values pasted from a spreadsheet ("1,03") work as-is.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	f, ok := utils.ParseFloat(s)
	if !ok {
		return fmt.Errorf("%w: %q is not a number", model.ErrInvalidQuery, s)
	}
	*n = number(f)
	return nil
}

func (n *number) whole(field string) (int, error) {
	f := float64(*n)
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be a whole number", model.ErrInvalidQuery, field)
	}
	return int(f), nil
}

// toleranceReq overrides the configured defaults field by field.
type toleranceReq struct {
	MRdLower     *number `json:"mrd_lower"`
	MRdUpper     *number `json:"mrd_upper"`
	VRdLower     *number `json:"vrd_lower"`
	VRdUpper     *number `json:"vrd_upper"`
	HeightOffset *number `json:"height_offset"`
	HeightBelow  *number `json:"height_below"`
	HeightAbove  *number `json:"height_above"`
	HeightMode   string  `json:"height_mode"`
	Compare      string  `json:"compare"`
}

func (r *toleranceReq) apply(def model.Tolerance) (model.Tolerance, error) {
	t := def
	if r == nil {
		return t, nil
	}
	for _, f := range []struct {
		src *number
		dst *float64
	}{
		{r.MRdLower, &t.MRdLower},
		{r.MRdUpper, &t.MRdUpper},
		{r.VRdLower, &t.VRdLower},
		{r.VRdUpper, &t.VRdUpper},
	} {
		if f.src != nil {
			*f.dst = float64(*f.src)
		}
	}

	// height_offset sets both sides; explicit below/above win over it
	for _, f := range []struct {
		name string
		src  *number
		dst  []*int
	}{
		{"height_offset", r.HeightOffset, []*int{&t.HeightBelow, &t.HeightAbove}},
		{"height_below", r.HeightBelow, []*int{&t.HeightBelow}},
		{"height_above", r.HeightAbove, []*int{&t.HeightAbove}},
	} {
		if f.src == nil {
			continue
		}
		v, err := f.src.whole(f.name)
		if err != nil {
			return t, err
		}
		for _, d := range f.dst {
			*d = v
		}
	}

	switch m := strings.ToLower(strings.TrimSpace(r.HeightMode)); m {
	case "":
	case "exact", "windowed":
		t.HeightMode = model.ParseHeightMode(m)
	default:
		return t, fmt.Errorf("%w: height_mode %q", model.ErrInvalidQuery, r.HeightMode)
	}
	switch m := strings.ToLower(strings.TrimSpace(r.Compare)); m {
	case "":
	case "point", "overlap", "range":
		t.Compare = model.ParseCompareMode(m)
	default:
		return t, fmt.Errorf("%w: compare %q", model.ErrInvalidQuery, r.Compare)
	}
	return t, nil
}

type modelReq struct {
	Model     string        `json:"model"`
	Tolerance *toleranceReq `json:"tolerance"`
}

type specsReq struct {
	MRd             number        `json:"mrd"`
	VRd             number        `json:"vrd"`
	Height          number        `json:"height"`
	ThicknessKey    string        `json:"thickness_key"`
	ThicknessVendor string        `json:"thickness_vendor"`
	Tolerance       *toleranceReq `json:"tolerance"`
}

func (r specsReq) target() (model.Target, error) {
	h, err := r.Height.whole("height")
	if err != nil {
		return model.Target{}, err
	}
	t := model.Target{
		MRd:       float64(r.MRd),
		VRd:       float64(r.VRd),
		Height:    h,
		Thickness: strings.TrimSpace(r.ThicknessKey),
	}
	if r.ThicknessVendor != "" {
		v, ok := parseVendor(r.ThicknessVendor)
		if !ok {
			return t, fmt.Errorf("%w: thickness_vendor %q", model.ErrInvalidQuery, r.ThicknessVendor)
		}
		t.ThicknessVendor = v
	}
	return t, nil
}

func parseVendor(s string) (model.Vendor, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "schoeck", "schöck", "schock":
		return model.Schoeck, true
	case "leviat", "halfen":
		return model.Leviat, true
	default:
		return "", false
	}
}
