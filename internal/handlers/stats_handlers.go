package handlers

import (
	"chatstats-backend/internal/services"
	"chatstats-backend/internal/stats"
	"chatstats-backend/pkg/httputil"
	"log"
	"net/http"
)

// StatsResponse carries both chart series plus the colored pie slices.
type StatsResponse struct {
	ByDate   stats.Counts  `json:"by_date"`
	BySender stats.Counts  `json:"by_sender"`
	Pie      []stats.Slice `json:"pie"`
	Total    int           `json:"total"`
}

// StatsHandlers serves the chart data derived from the conversation.
type StatsHandlers struct {
	session *services.ChatSession
}

// NewStatsHandlers creates a new StatsHandlers instance.
func NewStatsHandlers(session *services.ChatSession) *StatsHandlers {
	return &StatsHandlers{session: session}
}

// HandleGetStats returns both groupings computed from a single snapshot.
func (h *StatsHandlers) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.session.Snapshot(r.Context())
	if err != nil {
		log.Printf("ERROR [StatsHandlers] HandleGetStats: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	bySender := stats.BySender(snapshot)
	httputil.RespondJSON(w, http.StatusOK, StatsResponse{
		ByDate:   stats.ByDate(snapshot),
		BySender: bySender,
		Pie:      stats.PieSlices(bySender),
		Total:    len(snapshot),
	})
}

// HandleGetByDate returns the per-date message counts.
func (h *StatsHandlers) HandleGetByDate(w http.ResponseWriter, r *http.Request) {
	counts, err := h.session.ByDate(r.Context())
	if err != nil {
		log.Printf("ERROR [StatsHandlers] HandleGetByDate: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, counts)
}

// HandleGetBySender returns the per-sender message counts.
func (h *StatsHandlers) HandleGetBySender(w http.ResponseWriter, r *http.Request) {
	counts, err := h.session.BySender(r.Context())
	if err != nil {
		log.Printf("ERROR [StatsHandlers] HandleGetBySender: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, counts)
}
