/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Populates the database with an embedded roster document so the payment
	reports can be explored without data entry.

HOW SCENARIOS WORK:
 1. Reset database (clear all data, settings included)
 2. Restore the handler's default rates
 3. Parse the embedded document (factory/scenarios/*.yaml)
 4. Create records in dependency order, resolving codes to ids
 5. Save the document's rate settings, if it has any

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "faculty"}

ADDING NEW SCENARIOS:

	Drop a YAML file into factory/scenarios/. It is listed automatically.

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - factory/roster.go: document format and loader
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/warp/teaching-payroll/factory"
)

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := factory.Scenarios()
	if err != nil {
		writeDomainError(w, r, "Failed to list scenarios", err)
		return
	}
	dtos := make([]ScenarioDTO, len(list))
	for i, s := range list {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	doc, err := factory.Scenario(current)
	if err != nil {
		writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
		return
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: doc.ID, Name: doc.Name, Description: doc.Description})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := factory.Scenario(req.ScenarioID)
	if err != nil {
		var unknown *factory.ErrUnknownScenario
		if errors.As(err, &unknown) {
			writeError(w, http.StatusNotFound, "Unknown scenario", err)
			return
		}
		writeDomainError(w, r, "Failed to read scenario", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeDomainError(w, r, "Failed to reset database", err)
		return
	}
	if err := h.ensureRates(r); err != nil {
		writeDomainError(w, r, "Failed to restore settings", err)
		return
	}
	summary, err := factory.Load(r.Context(), h.Store, doc)
	if err != nil {
		h.currentScenario = ""
		writeDomainError(w, r, "Failed to load scenario", err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"scenario": req.ScenarioID,
		"loaded":   summary,
	})
}

// ResetDatabase clears all data and restores the default rates.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeDomainError(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	if err := h.ensureRates(r); err != nil {
		writeDomainError(w, r, "Failed to restore settings", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
