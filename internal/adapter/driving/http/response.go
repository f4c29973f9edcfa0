package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/artistban/internal/application"
	"github.com/ericfisherdev/artistban/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// BlockRequest is the JSON body for the manual block endpoint. ID is optional
// when URL carries it.
type BlockRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	ID   string `json:"id,omitempty"`
}

// BlockResponse reports the outcome of a manual block.
type BlockResponse struct {
	ArtistID string `json:"artist_id"`
	Outcome  string `json:"outcome"`
}

// RunReportResponse is the JSON representation of a pass report.
type RunReportResponse struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	State       string `json:"state"`
	Fetched     int    `json:"fetched"`
	Pending     int    `json:"pending"`
	Succeeded   int    `json:"succeeded"`
	AuthExpired int    `json:"auth_expired"`
	Failed      int    `json:"failed"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at"`
	Error       string `json:"error,omitempty"`
}

// StatusResponse is the JSON representation of the status endpoint.
type StatusResponse struct {
	State         string             `json:"state"`
	HasCredential bool               `json:"has_credential"`
	Account       string             `json:"account,omitempty"`
	LedgerSize    int                `json:"ledger_size"`
	LastRunDate   string             `json:"last_run_date,omitempty"`
	LastReport    *RunReportResponse `json:"last_report,omitempty"`
}

func toStatusResponse(s application.ControllerStatus, ledgerSize int) StatusResponse {
	resp := StatusResponse{
		State:         string(s.State),
		HasCredential: s.HasCredential,
		Account:       s.Account,
		LedgerSize:    ledgerSize,
	}
	if s.LastReport != nil {
		report := toRunReportResponse(*s.LastReport)
		resp.LastReport = &report
	}
	return resp
}

func toRunReportResponse(r model.RunReport) RunReportResponse {
	return RunReportResponse{
		ID:          r.ID,
		Mode:        string(r.Mode),
		State:       string(r.State),
		Fetched:     r.Fetched,
		Pending:     r.Pending,
		Succeeded:   r.Succeeded,
		AuthExpired: r.AuthExpired,
		Failed:      r.Failed,
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:  r.FinishedAt.UTC().Format(time.RFC3339),
		Error:       r.Error,
	}
}
