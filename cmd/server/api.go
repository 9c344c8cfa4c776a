package main

import (
	"encoding/json"
	"net/http"

	"github.com/raphaelsaraiva17/FeraFreshROI/internal/roi"
)

// calculateResponse is what the calculator page re-renders from on every
// input change: the resolved fresh count plus all three scenarios.
type calculateResponse struct {
	Fresh   float64      `json:"fresh"`
	Results []roi.Result `json:"results"`
}

const maxCalculateBody = 1 << 16

// handleCalculate recomputes every scenario for the posted input snapshot.
// Stateless: the browser owns the inputs, the server owns the arithmetic.
func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var inputs roi.Inputs

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCalculateBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&inputs); err != nil {
		http.Error(w, "invalid calculation request", http.StatusBadRequest)
		return
	}

	resp := calculateResponse{
		Fresh:   inputs.EffectiveFresh(),
		Results: roi.ComputeAll(inputs),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode calculation response", http.StatusInternalServerError)
		return
	}
}
