package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListGrowth handles GET /api/growth.
//
//	@Summary		List measurements with age in months
//	@Tags			growth
//	@Produce		json
//	@Success		200	{object}	GrowthListResponse
//	@Router			/growth [get]
func (h *Handler) ListGrowth(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.GrowthHistory(r.Context())
	if err != nil {
		writeError(w, "list growth", err)
		return
	}
	writeJSON(w, http.StatusOK, GrowthListResponse{Records: items})
}

// CreateGrowth handles POST /api/growth.
//
//	@Summary		Add a measurement
//	@Tags			growth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GrowthRequest	true	"Measurement"
//	@Success		201		{object}	models.Growth
//	@Failure		400		{object}	errResponse
//	@Router			/growth [post]
func (h *Handler) CreateGrowth(w http.ResponseWriter, r *http.Request) {
	create("create growth", h.svc.AddGrowth)(w, r)
}

// DeleteGrowth handles DELETE /api/growth/{id}.
func (h *Handler) DeleteGrowth(w http.ResponseWriter, r *http.Request) {
	remove("delete growth", h.svc.DeleteGrowth)(w, r)
}

// ListVaccinations handles GET /api/vaccinations.
//
//	@Summary		List recorded doses
//	@Tags			vaccinations
//	@Produce		json
//	@Success		200	{object}	VaccinationListResponse
//	@Router			/vaccinations [get]
func (h *Handler) ListVaccinations(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Vaccinations(r.Context())
	if err != nil {
		writeError(w, "list vaccinations", err)
		return
	}
	writeJSON(w, http.StatusOK, VaccinationListResponse{Vaccinations: items})
}

// VaccinationSchedule handles GET /api/vaccinations/schedule.
//
//	@Summary		National schedule merged with recorded doses
//	@Tags			vaccinations
//	@Produce		json
//	@Success		200	{object}	trackservice.ScheduleView
//	@Router			/vaccinations/schedule [get]
func (h *Handler) VaccinationSchedule(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.VaccinationSchedule(r.Context())
	if err != nil {
		writeError(w, "vaccination schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CreateVaccination handles POST /api/vaccinations.
//
//	@Summary		Record a dose
//	@Tags			vaccinations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		VaccinationRequest	true	"Dose"
//	@Success		201		{object}	models.Vaccination
//	@Failure		400		{object}	errResponse
//	@Router			/vaccinations [post]
func (h *Handler) CreateVaccination(w http.ResponseWriter, r *http.Request) {
	create("create vaccination", h.svc.AddVaccination)(w, r)
}

// UpdateVaccination handles PATCH /api/vaccinations/{id}.
//
//	@Summary		Update the administration fields of a dose
//	@Tags			vaccinations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Record id"
//	@Param			body	body		VaccinationPatch	true	"Fields"
//	@Success		200		{object}	models.Vaccination
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/vaccinations/{id} [patch]
func (h *Handler) UpdateVaccination(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in VaccinationPatch
	if !decodeJSON(w, r, &in) {
		return
	}
	v, err := h.svc.UpdateVaccination(r.Context(), id, in)
	if err != nil {
		writeError(w, "update vaccination", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ListDoctorVisits handles GET /api/doctor-visits.
//
//	@Summary		List visits
//	@Tags			doctor-visits
//	@Produce		json
//	@Success		200	{object}	DoctorVisitListResponse
//	@Router			/doctor-visits [get]
func (h *Handler) ListDoctorVisits(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.DoctorVisits(r.Context())
	if err != nil {
		writeError(w, "list doctor visits", err)
		return
	}
	writeJSON(w, http.StatusOK, DoctorVisitListResponse{Visits: items})
}

// CreateDoctorVisit handles POST /api/doctor-visits.
func (h *Handler) CreateDoctorVisit(w http.ResponseWriter, r *http.Request) {
	create("create doctor visit", h.svc.AddDoctorVisit)(w, r)
}

// DeleteDoctorVisit handles DELETE /api/doctor-visits/{id}.
func (h *Handler) DeleteDoctorVisit(w http.ResponseWriter, r *http.Request) {
	remove("delete doctor visit", h.svc.DeleteDoctorVisit)(w, r)
}

// ListTemperatures handles GET /api/temperatures.
//
//	@Summary		List readings of the trailing window with their band
//	@Tags			temperatures
//	@Produce		json
//	@Param			days	query		int	false	"Window length, default 7"
//	@Success		200		{object}	TemperatureListResponse
//	@Router			/temperatures [get]
func (h *Handler) ListTemperatures(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}
	items, err := h.svc.Temperatures(r.Context(), days)
	if err != nil {
		writeError(w, "list temperatures", err)
		return
	}
	writeJSON(w, http.StatusOK, TemperatureListResponse{Days: days, Temperatures: items})
}

// CreateTemperature handles POST /api/temperatures.
//
//	@Summary		Add a reading
//	@Tags			temperatures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TemperatureRequest	true	"Reading in °C"
//	@Success		201		{object}	health.ClassifiedTemperature
//	@Failure		400		{object}	errResponse
//	@Router			/temperatures [post]
func (h *Handler) CreateTemperature(w http.ResponseWriter, r *http.Request) {
	create("create temperature", h.svc.AddTemperature)(w, r)
}

// DeleteTemperature handles DELETE /api/temperatures/{id}.
func (h *Handler) DeleteTemperature(w http.ResponseWriter, r *http.Request) {
	remove("delete temperature", h.svc.DeleteTemperature)(w, r)
}

// ListMilestones handles GET /api/milestones.
//
//	@Summary		List milestones, optionally of one category
//	@Tags			milestones
//	@Produce		json
//	@Param			category	query		string	false	"motor, language, social or cognitive"
//	@Success		200			{object}	MilestoneListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/milestones [get]
func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Milestones(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, "list milestones", err)
		return
	}
	writeJSON(w, http.StatusOK, MilestoneListResponse{Milestones: items})
}

// CreateMilestone handles POST /api/milestones.
func (h *Handler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	create("create milestone", h.svc.AddMilestone)(w, r)
}

// DeleteMilestone handles DELETE /api/milestones/{id}.
func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	remove("delete milestone", h.svc.DeleteMilestone)(w, r)
}
