package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

// --- System handlers ---

// handleHealth responds with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds with version info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, common.VersionInfo())
}

// --- Registry handlers ---

func (s *Server) handleSchemeList(w http.ResponseWriter, r *http.Request) {
	schemes := s.app.Registry.Schemes()
	summaries := make([]models.SchemeSummary, 0, len(schemes))
	for _, sc := range schemes {
		summaries = append(summaries, sc.Summary())
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"schemes": summaries,
	})
}

// --- Analytics handlers ---

func (s *Server) handleAccountSchemes(w http.ResponseWriter, r *http.Request) {
	accountID := PathParam(r, "accountID")
	opts, ok := aggregateOptions(w, r)
	if !ok {
		return
	}

	results, err := s.app.Aggregation.Aggregate(r.Context(), accountID, opts)
	if err != nil {
		s.writeLookupError(w, err, accountID)
		return
	}
	WriteJSON(w, http.StatusOK, results)
}

func (s *Server) handleAccountScheme(w http.ResponseWriter, r *http.Request) {
	accountID := PathParam(r, "accountID")
	name := PathParam(r, "scheme")
	opts, ok := aggregateOptions(w, r)
	if !ok {
		return
	}

	result, err := s.app.Aggregation.Scheme(r.Context(), accountID, name, opts)
	if err != nil {
		s.writeLookupError(w, err, accountID)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// aggregateOptions parses the optional ?from=YYYY-MM-DD cutoff.
// Returns false and writes a 400 if it is malformed.
func aggregateOptions(w http.ResponseWriter, r *http.Request) (interfaces.AggregateOptions, bool) {
	var opts interfaces.AggregateOptions
	if from := r.URL.Query().Get("from"); from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("from must be YYYY-MM-DD: %v", err), "invalid_from")
			return opts, false
		}
		opts.From = d
	}
	return opts, true
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error, accountID string) {
	switch {
	case errors.Is(err, interfaces.ErrUnknownAccount):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "unknown_account")
	case errors.Is(err, interfaces.ErrUnknownScheme):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "unknown_scheme")
	default:
		s.logger.Error().Err(err).Str("account", accountID).Msg("Aggregation failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Aggregation error: %v", err))
	}
}

// --- Cache handlers ---

func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	invalidated := s.app.InvalidateCache()
	if invalidated {
		s.logger.Info().Msg("Record cache invalidated via HTTP")
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"invalidated": invalidated})
}
