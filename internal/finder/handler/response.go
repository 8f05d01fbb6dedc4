package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connector-finder/internal/finder/model"
)

type toleranceView struct {
	MRdLower    float64 `json:"mrd_lower"`
	MRdUpper    float64 `json:"mrd_upper"`
	VRdLower    float64 `json:"vrd_lower"`
	VRdUpper    float64 `json:"vrd_upper"`
	HeightBelow int     `json:"height_below"`
	HeightAbove int     `json:"height_above"`
	HeightMode  string  `json:"height_mode"`
	Compare     string  `json:"compare"`
}

func viewTolerance(t model.Tolerance) toleranceView {
	return toleranceView{
		MRdLower:    t.MRdLower,
		MRdUpper:    t.MRdUpper,
		VRdLower:    t.VRdLower,
		VRdUpper:    t.VRdUpper,
		HeightBelow: t.HeightBelow,
		HeightAbove: t.HeightAbove,
		HeightMode:  t.HeightMode.String(),
		Compare:     t.Compare.String(),
	}
}

type resolutionView struct {
	Vendor  model.Vendor `json:"vendor"`
	Status  model.Status `json:"status"`
	Specs   []model.Spec `json:"specs,omitempty"`
	Message string       `json:"message,omitempty"`
}

func viewResolutions(name string, rs []model.Resolution) []resolutionView {
	out := make([]resolutionView, 0, len(rs))
	for _, r := range rs {
		v := resolutionView{Vendor: r.Vendor, Status: r.Status, Specs: r.Specs}
		if r.Err != nil {
			v.Message = resolutionMessage(name, r)
		}
		out = append(out, v)
	}
	return out
}

func resolutionMessage(name string, r model.Resolution) string {
	if errors.Is(r.Err, model.ErrNotFound) {
		return fmt.Sprintf("Model number %s not found in %s's files.", name, r.Vendor.Label())
	}
	return r.Err.Error()
}

type groupView struct {
	Source *model.Spec   `json:"source,omitempty"`
	Target model.Target  `json:"target"`
	Tables []model.Table `json:"tables"`
}

type modelResp struct {
	Model       string           `json:"model"`
	Tolerance   toleranceView    `json:"tolerance"`
	Resolutions []resolutionView `json:"resolutions"`
	Groups      []groupView      `json:"groups"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

type specsResp struct {
	Tolerance toleranceView `json:"tolerance"`
	groupView
}

type productResp struct {
	Model       string           `json:"model"`
	Resolutions []resolutionView `json:"resolutions"`
}

type errorResp struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// statusFor maps finder errors onto HTTP statuses.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrMalformedHeight):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
