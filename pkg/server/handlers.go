package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"costwise-hq/atlas/pkg/budget"
	"costwise-hq/atlas/pkg/costs"
	"costwise-hq/atlas/pkg/orchestrator"
)

// TenantHeader selects the tenant for budget operations. Requests
// without it operate on the default tenant.
const TenantHeader = "X-Tenant-ID"

// DefaultTenant is the tenant id used when no header is supplied.
const DefaultTenant = "default"

type errorBody struct {
	Error  string `json:"error"`
	Fields []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// writeValidationError renders a budget ValidationError with its field
// details.
func writeValidationError(w http.ResponseWriter, verr budget.ValidationError) {
	body := errorBody{Error: "validation failed"}
	for _, fe := range verr.Errors {
		body.Fields = append(body.Fields, struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		}{fe.Field, fe.Message})
	}
	writeJSON(w, http.StatusBadRequest, body)
}

func tenantFrom(r *http.Request) string {
	if t := r.Header.Get(TenantHeader); t != "" {
		return t
	}
	return DefaultTenant
}

// handleGetCosts serves GET /v1/costs.
//
// Query parameters:
//   - from, to: inclusive date window (YYYY-MM-DD); defaults to the
//     current month to date
//   - currency: display currency code; defaults to the configured one
//   - previous: include previous-period deltas ("true" by default)
func (s *Server) handleGetCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	currency := r.URL.Query().Get("currency")
	includePrevious := r.URL.Query().Get("previous") != "false"

	resp, err := s.orch.GetAggregatedCosts(r.Context(), period, currency, includePrevious)
	if err != nil {
		var cfgErr *costs.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, cfgErr.Message)
			return
		}
		slog.ErrorContext(r.Context(), "aggregation failed", "error", err)
		writeError(w, http.StatusBadGateway, "cost aggregation failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func periodFromQuery(r *http.Request) (orchestrator.Period, error) {
	q := r.URL.Query()
	fromStr, toStr := q.Get("from"), q.Get("to")

	if fromStr == "" && toStr == "" {
		return orchestrator.MonthWindow(time.Now()), nil
	}
	if fromStr == "" || toStr == "" {
		return orchestrator.Period{}, errors.New("from and to must be provided together")
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return orchestrator.Period{}, fmt.Errorf("invalid from date %q (want YYYY-MM-DD)", fromStr)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return orchestrator.Period{}, fmt.Errorf("invalid to date %q (want YYYY-MM-DD)", toStr)
	}
	if to.Before(from) {
		return orchestrator.Period{}, errors.New("to must not precede from")
	}
	return orchestrator.Period{From: from.UTC(), To: to.UTC()}, nil
}

// handleBudgetUsage serves GET /v1/budget/usage.
func (s *Server) handleBudgetUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	usage, err := s.orch.GetBudgetUsage(r.Context(), tenantFrom(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "budget usage failed", "error", err)
		writeError(w, http.StatusBadGateway, "budget usage computation failed")
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// handleBudgetSettings serves GET and PUT /v1/budget/settings.
func (s *Server) handleBudgetSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.budgets.GetSettings(r.Context(), tenantFrom(r))
		if err != nil {
			slog.ErrorContext(r.Context(), "settings load failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load budget settings")
			return
		}
		writeJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var payload budget.Settings
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid settings payload: %v", err))
			return
		}

		updated, err := s.budgets.UpdateSettings(r.Context(), tenantFrom(r), &payload)
		if err != nil {
			var verr budget.ValidationError
			if errors.As(err, &verr) {
				writeValidationError(w, verr)
				return
			}
			slog.ErrorContext(r.Context(), "settings update failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update budget settings")
			return
		}
		writeJSON(w, http.StatusOK, updated)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleBudgetAlerts serves GET /v1/budget/alerts: an on-demand
// threshold evaluation against live spend.
func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	alerts, err := s.orch.CheckBudgetAlerts(r.Context(), tenantFrom(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "alert evaluation failed", "error", err)
		writeError(w, http.StatusBadGateway, "alert evaluation failed")
		return
	}
	if alerts == nil {
		alerts = []budget.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}
