/*
scenarios.go - Demo inputs for testing and demonstrations

PURPOSE:

	Provides pre-built calculation inputs that exercise the interesting
	parts of the timeline: the first-year January rule, promotion
	fixation, a mid-year increment month and clamping at the top of a
	track. Running a scenario computes it against the server's reference
	data and policy; nothing is saved.

AVAILABLE SCENARIOS:

	first-year:        GP 6600, January increment, through Jan-2021
	promotion-2023:    GP 6600 promoted to GP 7600 in Jun-2023
	july-increment:    July increment month, granted from Jul-2020
	top-of-scale:      Starts on the last step; increments are no-ops
	gp-7600:           Direct GP 7600 entrant

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/promotion-2023/run

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and input

SEE ALSO:
  - handlers.go: Shared compute path and error mapping
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/arrear-engine/arrear"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "first-year",
		Name:        "First Year",
		Description: "GP 6600 at 73700, January increment: no increment in Jan-2020, one in Jan-2021",
		Input:       CalculateRequest{GradePay: 6600, Basic: 73700, IncrementMonth: 1, EndMonth: "202101"},
	},
	{
		ID:          "promotion-2023",
		Name:        "Promotion in 2023",
		Description: "GP 6600 promoted in Jun-2023 and fixed at the first GP 7600 step",
		Input:       CalculateRequest{GradePay: 6600, Basic: 73700, IncrementMonth: 1, EndMonth: "202602", PromotionMonth: "202306"},
	},
	{
		ID:          "july-increment",
		Name:        "July Increment",
		Description: "Non-January increment month grants in the first year",
		Input:       CalculateRequest{GradePay: 6600, Basic: 73700, IncrementMonth: 7, EndMonth: "202602"},
	},
	{
		ID:          "top-of-scale",
		Name:        "Top of Scale",
		Description: "Starts on the last GP 6600 step; increments leave the step unchanged",
		Input:       CalculateRequest{GradePay: 6600, Basic: 165600, IncrementMonth: 1, EndMonth: "202602"},
	},
	{
		ID:          "gp-7600",
		Name:        "GP 7600 Entrant",
		Description: "Direct GP 7600 entrant with an October increment month",
		Input:       CalculateRequest{GradePay: 7600, Basic: 96800, IncrementMonth: 10, EndMonth: "202602"},
	},
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// RunScenario computes a predefined scenario without saving it.
// POST /api/scenarios/{id}/run
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scenario, ok := findScenario(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	engine := h.Engine.With(arrear.WithPolicy(scenario.Input.Policy(h.Engine.Policy())))
	_, res, err := h.compute(engine, scenario.Input)
	if err != nil {
		h.writeDomainError(w, r, "Failed to run scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scenario": scenario,
		"result":   toResultDTO(res),
	})
}
