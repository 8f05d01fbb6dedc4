// Package handler is the HTTP shell over the finder: JSON searches, the
// resolver lookup and the .xlsx exports.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"connector-finder/internal/finder/export"
	"connector-finder/internal/finder/model"
	"connector-finder/internal/finder/service"
	"connector-finder/internal/middleware"
	"connector-finder/internal/observability"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// suggestions returned with a not-found answer
const maxSuggestions = 5

type Handler struct {
	finder   *service.Finder
	defaults model.Tolerance
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

func New(f *service.Finder, defaults model.Tolerance, m *observability.Metrics, logger zerolog.Logger) *Handler {
	if m == nil {
		m = observability.NewMetrics()
	}
	return &Handler{finder: f, defaults: defaults, metrics: m, logger: logger}
}

func (h *Handler) log(r *http.Request) *zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		l := h.logger.With().Str("rid", rid).Logger()
		return &l
	}
	return &h.logger
}

// SearchModel: POST /search/model
func (h *Handler) SearchModel(w http.ResponseWriter, r *http.Request) {
	res, tol, err := h.searchModel(r)
	if err != nil {
		h.fail(w, r, "model", err, nil)
		return
	}
	resp := modelResp{
		Model:       res.Model,
		Tolerance:   viewTolerance(tol),
		Resolutions: viewResolutions(res.Model, res.Resolutions),
		Groups:      h.groups(res),
		Suggestions: res.Suggestions,
	}
	h.respond(w, r, resp)
}

// SearchModelXLSX: POST /search/model.xlsx
func (h *Handler) SearchModelXLSX(w http.ResponseWriter, r *http.Request) {
	res, _, err := h.searchModel(r)
	if err != nil {
		h.fail(w, r, "model", err, nil)
		return
	}
	if len(res.Groups) == 0 {
		// already counted as not_found by searchModel
		h.writeError(w, r, fmt.Errorf("%w: %s", model.ErrNotFound, res.Model), res.Suggestions)
		return
	}
	groups := h.groups(res)
	var sheets []export.Sheet
	for i, g := range groups {
		for _, t := range g.Tables {
			name := t.Vendor.Label()
			if len(groups) > 1 {
				name = fmt.Sprintf("%d %s", i+1, name)
			}
			sheets = append(sheets, export.Sheet{Name: name, Table: t})
		}
	}
	h.sendXLSX(w, r, sheets, "alternatives-"+res.Model)
}

func (h *Handler) searchModel(r *http.Request) (model.ModelSearch, model.Tolerance, error) {
	var req modelReq
	if err := decode(r, &req); err != nil {
		return model.ModelSearch{}, h.defaults, err
	}
	req.Model = strings.TrimSpace(req.Model)
	if req.Model == "" {
		return model.ModelSearch{}, h.defaults, fmt.Errorf("%w: model is required", model.ErrInvalidQuery)
	}
	tol, err := req.Tolerance.apply(h.defaults)
	if err != nil {
		return model.ModelSearch{}, tol, err
	}
	start := time.Now()
	res, err := h.finder.SearchByModel(req.Model, tol)
	if err != nil {
		return res, tol, err
	}

	outcome := "ok"
	if len(res.Groups) == 0 {
		outcome = "not_found"
	}
	h.metrics.ObserveSearch("model", outcome)
	for _, g := range res.Groups {
		h.metrics.ObserveAlternatives(g.Alternatives)
	}
	h.log(r).Info().
		Str("model", req.Model).
		Int("groups", len(res.Groups)).
		Int("suggestions", len(res.Suggestions)).
		Dur("elapsed", time.Since(start)).
		Msg("search by model")
	return res, tol, nil
}

// groups formats each alternatives group, flagging the queried model.
func (h *Handler) groups(res model.ModelSearch) []groupView {
	out := make([]groupView, 0, len(res.Groups))
	for _, g := range res.Groups {
		out = append(out, groupView{
			Source: g.Source,
			Target: g.Alternatives.Target,
			Tables: service.FormatAlternatives(g.Alternatives, res.Model),
		})
	}
	return out
}

// SearchSpecs: POST /search/specs
func (h *Handler) SearchSpecs(w http.ResponseWriter, r *http.Request) {
	alts, tol, err := h.searchSpecs(r)
	if err != nil {
		h.fail(w, r, "specs", err, nil)
		return
	}
	h.respond(w, r, specsResp{
		Tolerance: viewTolerance(tol),
		groupView: groupView{Target: alts.Target, Tables: service.FormatAlternatives(alts, "")},
	})
}

// SearchSpecsXLSX: POST /search/specs.xlsx
func (h *Handler) SearchSpecsXLSX(w http.ResponseWriter, r *http.Request) {
	alts, _, err := h.searchSpecs(r)
	if err != nil {
		h.fail(w, r, "specs", err, nil)
		return
	}
	var sheets []export.Sheet
	for _, t := range service.FormatAlternatives(alts, "") {
		sheets = append(sheets, export.Sheet{Name: t.Vendor.Label(), Table: t})
	}
	h.sendXLSX(w, r, sheets, "alternatives")
}

func (h *Handler) searchSpecs(r *http.Request) (model.Alternatives, model.Tolerance, error) {
	var req specsReq
	if err := decode(r, &req); err != nil {
		return model.Alternatives{}, h.defaults, err
	}
	target, err := req.target()
	if err != nil {
		return model.Alternatives{}, h.defaults, err
	}
	tol, err := req.Tolerance.apply(h.defaults)
	if err != nil {
		return model.Alternatives{}, tol, err
	}
	start := time.Now()
	alts, err := h.finder.SearchBySpecs(target, tol)
	if err != nil {
		return alts, tol, err
	}

	h.metrics.ObserveSearch("specs", "ok")
	h.metrics.ObserveAlternatives(alts)
	h.log(r).Info().
		Float64("mrd", target.MRd).
		Float64("vrd", target.VRd).
		Int("height", target.Height).
		Str("thickness", target.Thickness).
		Str("schoeck", string(alts.Schoeck.Status)).
		Str("leviat", string(alts.Leviat.Status)).
		Int("schoeck_n", alts.Schoeck.Len()).
		Int("leviat_n", alts.Leviat.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("search by specs")
	return alts, tol, nil
}

// Product: GET /products/{vendor}/{model}; vendor "all" asks both.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(pathParam(r, "model"))
	vendor := pathParam(r, "vendor")

	var res []model.Resolution
	if strings.EqualFold(vendor, "all") {
		res = h.finder.ResolveByModel(name)
	} else {
		v, ok := parseVendor(vendor)
		if !ok {
			h.fail(w, r, "product", fmt.Errorf("%w: unknown vendor %q", model.ErrInvalidQuery, vendor), nil)
			return
		}
		res = []model.Resolution{h.finder.Resolution(v, name)}
	}

	found := false
	var malformed error
	for _, rs := range res {
		found = found || rs.Status == model.StatusOK
		if rs.Status == model.StatusMalformedHeight {
			malformed = rs.Err
		}
	}
	if !found && malformed != nil {
		h.fail(w, r, "product", malformed, nil)
		return
	}
	if !found {
		h.fail(w, r, "product", fmt.Errorf("%w: %s", model.ErrNotFound, name), h.finder.Suggest(name, maxSuggestions))
		return
	}
	h.metrics.ObserveSearch("product", "ok")
	h.respond(w, r, productResp{Model: name, Resolutions: viewResolutions(name, res)})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any) {
	if err := writeJSON(w, http.StatusOK, v); err != nil {
		h.log(r).Error().Err(err).Msg("write json")
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, mode string, err error, suggestions []string) {
	status := statusFor(err)
	outcome := "invalid"
	switch status {
	case http.StatusNotFound:
		outcome = "not_found"
	case http.StatusInternalServerError:
		outcome = "error"
		h.log(r).Error().Err(err).Str("mode", mode).Msg("search failed")
	default:
		h.log(r).Debug().Err(err).Str("mode", mode).Msg("search rejected")
	}
	h.metrics.ObserveSearch(mode, outcome)
	h.writeError(w, r, err, suggestions)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, suggestions []string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal"
	}
	if err := writeJSON(w, status, errorResp{Error: msg, Suggestions: suggestions}); err != nil {
		h.log(r).Error().Err(err).Msg("write json")
	}
}

// sendXLSX renders into memory first so a failure can still become a 500.
func (h *Handler) sendXLSX(w http.ResponseWriter, r *http.Request, sheets []export.Sheet, base string) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sheets); err != nil {
		h.fail(w, r, "export", err, nil)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, fileName(base)+".xlsx"))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log(r).Error().Err(err).Msg("write xlsx")
	}
}

// fileName keeps letters, digits, '-', '_' and '.'.
func fileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, model.ErrInvalidQuery) {
			return err
		}
		return fmt.Errorf("%w: bad json: %v", model.ErrInvalidQuery, err)
	}
	return nil
}

// pathParam returns the unescaped chi URL parameter; Leviat names may
// carry spaces.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
