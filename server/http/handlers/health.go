package handlers

import (
	"encoding/json"
	"net/http"

	"connector-finder/internal/finder/model"
	"connector-finder/internal/finder/service"
)

type healthResp struct {
	Status   string                           `json:"status"`
	Datasets map[model.Vendor]model.LoadStats `json:"datasets"`
	Mapping  int                              `json:"mapping_pairs"`
}

// Health reports liveness and what was loaded at startup.
func Health(f *service.Finder) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResp{
			Status:   "ok",
			Datasets: f.Stats(),
			Mapping:  f.Mapper().Len(),
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
