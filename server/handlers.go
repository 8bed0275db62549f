package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/lumen-labs/lumenplug"
	"github.com/lumen-labs/lumenplug/journal"
	"github.com/lumen-labs/lumenplug/resolve"
)

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListPlugins returns all registered plugins.
func (s *Server) handleListPlugins(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Plugins())
}

// handleListCommands returns every plugin's command descriptors. No
// entry points are resolved by listing.
func (s *Server) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Commands())
}

// invokeRequest is the optional body for command invocation.
type invokeRequest struct {
	Args []any `json:"args"`
}

// invokeResponse wraps a successful invocation result.
type invokeResponse struct {
	ID     string `json:"id"`
	Result any    `json:"result"`
}

// handleInvokeCommand dispatches one command invocation.
func (s *Server) handleInvokeCommand(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req invokeRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isMaxBytesError(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "READ_ERROR", err.Error())
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "PARSE_ERROR", err.Error())
			return
		}
	}

	result, err := s.catalog.InvokeCommand(r.Context(), id, req.Args...)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invokeResponse{ID: id, Result: result})
}

// handleListSampleData returns every plugin's sample dataset descriptors.
func (s *Server) handleListSampleData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.SampleData())
}

// sampleDataResponse carries loaded layers back to the shell.
type sampleDataResponse struct {
	Key    string                `json:"key"`
	Layers []lumenplug.LayerData `json:"layers"`
}

// handleLoadSampleData loads one sample dataset.
func (s *Server) handleLoadSampleData(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	layers, err := s.catalog.LoadSampleData(r.Context(), key)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sampleDataResponse{Key: key, Layers: layers})
}

// handleListWidgets returns every plugin's widget descriptors.
func (s *Server) handleListWidgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Widgets())
}

// widgetResponse describes one constructed panel instance.
type widgetResponse struct {
	ID             string `json:"id"`
	ContributionID string `json:"contribution_id"`
	DisplayName    string `json:"display_name"`
	Title          string `json:"title"`
}

// handleCreateWidget constructs a fresh widget panel instance.
func (s *Server) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	handle, err := s.catalog.CreateWidget(r.Context(), id)
	if err != nil {
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, widgetResponse{
		ID:             handle.ID,
		ContributionID: handle.ContributionID,
		DisplayName:    handle.DisplayName,
		Title:          handle.Widget.WidgetTitle(),
	})
}

// handleListJournal returns recent dispatch journal entries.
func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "journal store not configured")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "PARSE_ERROR", fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	var entries []journal.Entry
	var err error
	if contribution := r.URL.Query().Get("contribution"); contribution != "" {
		entries, err = s.journal.ListByContribution(r.Context(), contribution, limit)
	} else {
		entries, err = s.journal.ListRecent(r.Context(), limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// writeDispatchError maps the registry error taxonomy onto HTTP status
// codes. Unknown ids are the caller's mistake; malformed sample data is
// an unprocessable plugin result; everything else is an isolated
// plugin-side failure.
func (s *Server) writeDispatchError(w http.ResponseWriter, err error) {
	var (
		unknownCmd    *lumenplug.UnknownCommandError
		unknownSample *lumenplug.UnknownSampleDataError
		unknownWidget *lumenplug.UnknownWidgetError
		malformed     *lumenplug.MalformedSampleDataError
		resolution    *resolve.ResolutionError
		execution     *lumenplug.ExecutionError
		widgetErr     *lumenplug.WidgetConstructionError
	)
	switch {
	case errors.As(err, &unknownCmd), errors.As(err, &unknownSample), errors.As(err, &unknownWidget):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &malformed):
		writeError(w, http.StatusUnprocessableEntity, "MALFORMED_SAMPLE_DATA", err.Error())
	case errors.As(err, &resolution):
		writeError(w, http.StatusInternalServerError, "RESOLUTION_ERROR", err.Error())
	case errors.As(err, &widgetErr):
		writeError(w, http.StatusInternalServerError, "WIDGET_ERROR", err.Error())
	case errors.As(err, &execution):
		writeError(w, http.StatusInternalServerError, "EXECUTION_ERROR", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "DISPATCH_ERROR", err.Error())
	}
}

func isMaxBytesError(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
