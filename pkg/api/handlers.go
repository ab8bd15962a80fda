package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dixieflatline76/halook/config"
	"github.com/dixieflatline76/halook/pkg/crop"
	"github.com/dixieflatline76/halook/pkg/look"
	"github.com/dixieflatline76/halook/pkg/render"
	"github.com/dixieflatline76/halook/util/log"
)

// renderParams is the look and geometry shared by export and preview
// requests. A missing look is neutral and a missing intensity means full
// strength.
type renderParams struct {
	Look      look.Look  `json:"look"`
	Intensity *float64   `json:"intensity,omitempty"`
	Crop      *crop.Rect `json:"crop,omitempty"`
	Aspect    *float64   `json:"aspect,omitempty"`
}

func defaultRenderParams() renderParams {
	return renderParams{Look: look.NeutralLook()}
}

func (p renderParams) request() render.Request {
	intensity := 1.0
	if p.Intensity != nil {
		intensity = *p.Intensity
	}
	return render.Request{
		Look:         p.Look,
		Intensity:    intensity,
		Crop:         p.Crop,
		TargetAspect: p.Aspect,
	}
}

type exportRequest struct {
	Image []byte `json:"image"` // base64 in JSON
	renderParams
}

type suggestCropRequest struct {
	Image []byte  `json:"image"`
	Ratio float64 `json:"ratio"`
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"version": config.AppVersion,
	})
}

// handleExport renders a full-resolution JPEG.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := exportRequest{renderParams: defaultRenderParams()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	renderReq := req.request()
	renderReq.Data = req.Image
	done, err := s.exporter.Start(r.Context(), renderReq)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	res := <-done
	if res.Err != nil {
		http.Error(w, res.Err.Error(), statusFor(res.Err))
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Result.JPEG); err != nil {
		log.Printf("Failed to write export: %v", err)
	}
}

// handleSuggestCrop returns the smart crop for a ratio.
func (s *Server) handleSuggestCrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req suggestCropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	img, _, err := render.Decode(r.Context(), req.Image)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	rect, err := render.SuggestCropWithFaces(r.Context(), img, req.Ratio, s.faces)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rect)
}

// handlePresets lists the preset catalog. ?force=1 reloads it.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.catalog == nil {
		http.Error(w, "Feature not available", http.StatusServiceUnavailable)
		return
	}

	presets, err := s.catalog.Presets(r.Context(), r.URL.Query().Get("force") == "1")
	if err != nil {
		log.Printf("Failed to load presets: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

func statusFor(err error) int {
	var decodeErr *render.DecodeError
	switch {
	case errors.As(err, &decodeErr), errors.Is(err, render.ErrNoSource):
		return http.StatusBadRequest
	case errors.Is(err, render.ErrExportBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
