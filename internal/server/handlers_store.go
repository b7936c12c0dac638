package server

import (
	"net/http"
	"time"

	"github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/monitoring"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/reporting"
)

// Watchlists.

func (s *Server) handleListWatchlists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.store.ListWatchlists(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	list, err := s.store.CreateWatchlist(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, list)
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.GetWatchlist(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWatchlist(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddWatchlistSymbol(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.store.AddSymbol(r.Context(), id, req.Symbol); err != nil {
		s.respondError(w, r, err)
		return
	}
	list, err := s.store.GetWatchlist(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleRemoveWatchlistSymbol(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.RemoveSymbol(r.Context(), id, r.PathValue("symbol")); err != nil {
		s.respondError(w, r, err)
		return
	}
	list, err := s.store.GetWatchlist(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Trade journal.

func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.JournalFilter{
		Symbol:     q.Get("symbol"),
		OnlyOpen:   q.Get("open") == "true",
		OnlyClosed: q.Get("closed") == "true",
	}
	entries, err := s.store.ListEntries(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	var entry store.JournalEntry
	if err := decodeJSON(w, r, &entry); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.store.CreateEntry(r.Context(), &entry); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.GetEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateJournal(w http.ResponseWriter, r *http.Request) {
	var entry store.JournalEntry
	if err := decodeJSON(w, r, &entry); err != nil {
		s.respondError(w, r, err)
		return
	}
	entry.ID = r.PathValue("id")
	if err := s.store.UpdateEntry(r.Context(), &entry); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleCloseJournal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExitPrice float64    `json:"exitPrice"`
		ClosedAt  *time.Time `json:"closedAt,omitempty"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	closedAt := time.Time{}
	if req.ClosedAt != nil {
		closedAt = *req.ClosedAt
	}
	entry, err := s.store.CloseEntry(r.Context(), r.PathValue("id"), req.ExitPrice, closedAt)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleJournalStats(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEntries(r.Context(), store.JournalFilter{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reporting.ComputeTradeStats(entries))
}

// Portfolio lots.

func (s *Server) handleListLots(w http.ResponseWriter, r *http.Request) {
	lots, err := s.store.ListLots(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lots)
}

func (s *Server) handleAddLot(w http.ResponseWriter, r *http.Request) {
	var lot store.Lot
	if err := decodeJSON(w, r, &lot); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.store.AddLot(r.Context(), &lot); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, lot)
}

func (s *Server) handleDeleteLot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLot(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.valuer.Snapshot(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Alerts.

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := s.store.ListAlerts(r.Context(), activeOnly)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol    string          `json:"symbol"`
		Kind      store.AlertKind `json:"kind"`
		Threshold float64         `json:"threshold"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	alert, err := s.store.CreateAlert(r.Context(), req.Symbol, req.Kind, req.Threshold)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAlert(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRunAlerts(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.respondError(w, r, errors.NewValidationError("server", "run_alerts", "alert scheduler is not running"))
		return
	}
	triggers, err := s.scheduler.RunNow(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	for _, t := range triggers {
		monitoring.RecordAlertTriggered(string(t.Alert.Kind))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"triggered": len(triggers),
		"triggers":  triggers,
	})
}

// Settings.

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.ListSettings(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	key := r.PathValue("key")
	if err := s.store.SetSetting(r.Context(), key, req.Value); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{key: req.Value})
}

func (s *Server) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSetting(r.Context(), r.PathValue("key")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
