package api

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Dashboard handles GET /api/dashboard.
//
//	@Summary		Today's overview, active sleep and 7-day trends
//	@Tags			views
//	@Produce		json
//	@Success		200	{object}	trackservice.Dashboard
//	@Router			/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// CalendarMonth handles GET /api/calendar/month.
//
//	@Summary		Per-day summaries of a civil month
//	@Tags			calendar
//	@Produce		json
//	@Param			month	query		string	false	"YYYY-MM, default current month"
//	@Success		200		{object}	trackservice.MonthView
//	@Failure		400		{object}	errResponse
//	@Router			/calendar/month [get]
func (h *Handler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")
	month, err := h.svc.ParseMonthOrCurrent(raw)
	if err != nil {
		writeError(w, "parse month", err)
		return
	}
	view, err := h.svc.MonthSummary(r.Context(), month)
	if err != nil {
		writeError(w, "month summary", err, slog.String("month", month.String()))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CalendarDay handles GET /api/calendar/day.
//
//	@Summary		Records and summary of one civil day
//	@Tags			calendar
//	@Produce		json
//	@Param			date	query		string	false	"YYYY-MM-DD, default today"
//	@Success		200		{object}	trackservice.DayDetail
//	@Failure		400		{object}	errResponse
//	@Router			/calendar/day [get]
func (h *Handler) CalendarDay(w http.ResponseWriter, r *http.Request) {
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.DayDetail(r.Context(), day)
	if err != nil {
		writeError(w, "day detail", err, slog.String("date", day.String()))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CalendarTrends handles GET /api/calendar/trends.
//
//	@Summary		Dense daily series for charts
//	@Tags			calendar
//	@Produce		json
//	@Param			range	query		string	false	"7, 30, 90 or all; default 30"
//	@Success		200		{object}	trackservice.Trends
//	@Router			/calendar/trends [get]
func (h *Handler) CalendarTrends(w http.ResponseWriter, r *http.Request) {
	tr, err := h.svc.Trends(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, "trends", err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// Baby handles GET /api/baby.
//
//	@Summary		Subject profile
//	@Tags			baby
//	@Produce		json
//	@Success		200	{object}	trackservice.Profile
//	@Failure		404	{object}	errResponse
//	@Router			/baby [get]
func (h *Handler) Baby(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Baby(r.Context())
	if err != nil {
		writeError(w, "get baby", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Export handles GET /api/export.
//
//	@Summary		Download every record as one JSON document
//	@Tags			export
//	@Produce		json
//	@Success		200	{object}	models.Snapshot
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.svc.ExportFilename()))
	writeJSON(w, http.StatusOK, snap)
}
