package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/grapebaby/grape/internal/civil"
	"github.com/grapebaby/grape/internal/trackservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *trackservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *trackservice.Service) *Handler {
	return &Handler{svc: svc}
}

// create decodes a form, passes it to fn and answers 201 with the stored record.
func create[In, Out any](op string, fn func(context.Context, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if !decodeJSON(w, r, &in) {
			return
		}
		out, err := fn(r.Context(), in)
		if err != nil {
			writeError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// remove deletes the record named by the {id} URL parameter and answers 204.
func remove(op string, fn func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := fn(r.Context(), id); err != nil {
			writeError(w, op, err, slog.String("id", id))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// queryDate reads ?date=, defaulting to today at the service offset.
func (h *Handler) queryDate(w http.ResponseWriter, r *http.Request) (civil.Date, bool) {
	d, err := h.svc.ParseDateOrToday(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, "parse date", err)
		return civil.Date{}, false
	}
	return d, true
}

// ListFeedings handles GET /api/feedings.
//
//	@Summary		List the feedings of one civil day
//	@Tags			feedings
//	@Produce		json
//	@Param			date	query		string	false	"YYYY-MM-DD, default today"
//	@Success		200		{object}	FeedingListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/feedings [get]
func (h *Handler) ListFeedings(w http.ResponseWriter, r *http.Request) {
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	items, err := h.svc.FeedingsOn(r.Context(), day)
	if err != nil {
		writeError(w, "list feedings", err, slog.String("date", day.String()))
		return
	}
	writeJSON(w, http.StatusOK, FeedingListResponse{Date: day.String(), Feedings: items})
}

// RecentFeedings handles GET /api/feedings/recent.
//
//	@Summary		List the latest feedings
//	@Tags			feedings
//	@Produce		json
//	@Param			limit	query		int	false	"Max results, default 10"
//	@Success		200		{object}	FeedingListResponse
//	@Router			/feedings/recent [get]
func (h *Handler) RecentFeedings(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.svc.RecentFeedings(r.Context(), limit)
	if err != nil {
		writeError(w, "recent feedings", err)
		return
	}
	writeJSON(w, http.StatusOK, FeedingListResponse{Feedings: items})
}

// CreateFeeding handles POST /api/feedings.
//
//	@Summary		Log a feeding
//	@Tags			feedings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FeedingRequest	true	"Feeding"
//	@Success		201		{object}	models.Feeding
//	@Failure		400		{object}	errResponse
//	@Router			/feedings [post]
func (h *Handler) CreateFeeding(w http.ResponseWriter, r *http.Request) {
	create("create feeding", h.svc.LogFeeding)(w, r)
}

// DeleteFeeding handles DELETE /api/feedings/{id}.
//
//	@Summary		Delete a feeding
//	@Tags			feedings
//	@Param			id	path	string	true	"Record id"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	errResponse
//	@Router			/feedings/{id} [delete]
func (h *Handler) DeleteFeeding(w http.ResponseWriter, r *http.Request) {
	remove("delete feeding", h.svc.DeleteFeeding)(w, r)
}

// ListSleeps handles GET /api/sleeps.
//
//	@Summary		List the sleep intervals starting on one civil day
//	@Tags			sleeps
//	@Produce		json
//	@Param			date	query		string	false	"YYYY-MM-DD, default today"
//	@Success		200		{object}	SleepListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/sleeps [get]
func (h *Handler) ListSleeps(w http.ResponseWriter, r *http.Request) {
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	items, err := h.svc.SleepsOn(r.Context(), day)
	if err != nil {
		writeError(w, "list sleeps", err, slog.String("date", day.String()))
		return
	}
	writeJSON(w, http.StatusOK, SleepListResponse{Date: day.String(), Sleeps: items})
}

// ActiveSleep handles GET /api/sleeps/active.
//
//	@Summary		Get the open sleep interval
//	@Tags			sleeps
//	@Produce		json
//	@Success		200	{object}	ActiveSleepResponse
//	@Router			/sleeps/active [get]
func (h *Handler) ActiveSleep(w http.ResponseWriter, r *http.Request) {
	sl, err := h.svc.ActiveSleep(r.Context())
	if err != nil {
		writeError(w, "active sleep", err)
		return
	}
	writeJSON(w, http.StatusOK, ActiveSleepResponse{Sleep: sl})
}

// CreateSleep handles POST /api/sleeps.
//
//	@Summary		Log or start a sleep interval
//	@Tags			sleeps
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SleepRequest	true	"Sleep; omit endTime to start"
//	@Success		201		{object}	models.Sleep
//	@Failure		400		{object}	errResponse
//	@Router			/sleeps [post]
func (h *Handler) CreateSleep(w http.ResponseWriter, r *http.Request) {
	create("create sleep", h.svc.LogSleep)(w, r)
}

// EndSleep handles POST /api/sleeps/{id}/end.
//
//	@Summary		End an open sleep interval
//	@Tags			sleeps
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Record id"
//	@Param			body	body		EndSleepRequest	false	"End time, default now"
//	@Success		200		{object}	models.Sleep
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/sleeps/{id}/end [post]
func (h *Handler) EndSleep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in EndSleepRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &in) {
		return
	}
	sl, err := h.svc.EndSleep(r.Context(), id, in)
	if err != nil {
		writeError(w, "end sleep", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

// DeleteSleep handles DELETE /api/sleeps/{id}.
//
//	@Summary		Delete a sleep interval
//	@Tags			sleeps
//	@Param			id	path	string	true	"Record id"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	errResponse
//	@Router			/sleeps/{id} [delete]
func (h *Handler) DeleteSleep(w http.ResponseWriter, r *http.Request) {
	remove("delete sleep", h.svc.DeleteSleep)(w, r)
}

// ListDiapers handles GET /api/diapers.
//
//	@Summary		List the diaper changes of one civil day
//	@Tags			diapers
//	@Produce		json
//	@Param			date	query		string	false	"YYYY-MM-DD, default today"
//	@Success		200		{object}	DiaperListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/diapers [get]
func (h *Handler) ListDiapers(w http.ResponseWriter, r *http.Request) {
	day, ok := h.queryDate(w, r)
	if !ok {
		return
	}
	items, err := h.svc.DiapersOn(r.Context(), day)
	if err != nil {
		writeError(w, "list diapers", err, slog.String("date", day.String()))
		return
	}
	writeJSON(w, http.StatusOK, DiaperListResponse{Date: day.String(), Diapers: items})
}

// CreateDiaper handles POST /api/diapers.
//
//	@Summary		Log a diaper change
//	@Tags			diapers
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DiaperRequest	true	"Diaper change"
//	@Success		201		{object}	models.Diaper
//	@Failure		400		{object}	errResponse
//	@Router			/diapers [post]
func (h *Handler) CreateDiaper(w http.ResponseWriter, r *http.Request) {
	create("create diaper", h.svc.LogDiaper)(w, r)
}

// DeleteDiaper handles DELETE /api/diapers/{id}.
func (h *Handler) DeleteDiaper(w http.ResponseWriter, r *http.Request) {
	remove("delete diaper", h.svc.DeleteDiaper)(w, r)
}
