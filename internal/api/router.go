package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grapebaby/grape/internal/trackservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *trackservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware)

	r.Get("/dashboard", h.Dashboard)
	r.Get("/baby", h.Baby)
	r.Get("/export", h.Export)

	r.Route("/calendar", func(r chi.Router) {
		r.Get("/month", h.CalendarMonth)
		r.Get("/day", h.CalendarDay)
		r.Get("/trends", h.CalendarTrends)
	})

	r.Route("/feedings", func(r chi.Router) {
		r.Get("/", h.ListFeedings)
		r.Post("/", h.CreateFeeding)
		r.Get("/recent", h.RecentFeedings)
		r.Delete("/{id}", h.DeleteFeeding)
	})

	r.Route("/sleeps", func(r chi.Router) {
		r.Get("/", h.ListSleeps)
		r.Post("/", h.CreateSleep)
		r.Get("/active", h.ActiveSleep)
		r.Post("/{id}/end", h.EndSleep)
		r.Delete("/{id}", h.DeleteSleep)
	})

	r.Route("/diapers", func(r chi.Router) {
		r.Get("/", h.ListDiapers)
		r.Post("/", h.CreateDiaper)
		r.Delete("/{id}", h.DeleteDiaper)
	})

	r.Route("/growth", func(r chi.Router) {
		r.Get("/", h.ListGrowth)
		r.Post("/", h.CreateGrowth)
		r.Delete("/{id}", h.DeleteGrowth)
	})

	r.Route("/vaccinations", func(r chi.Router) {
		r.Get("/", h.ListVaccinations)
		r.Post("/", h.CreateVaccination)
		r.Get("/schedule", h.VaccinationSchedule)
		r.Patch("/{id}", h.UpdateVaccination)
	})

	r.Route("/doctor-visits", func(r chi.Router) {
		r.Get("/", h.ListDoctorVisits)
		r.Post("/", h.CreateDoctorVisit)
		r.Delete("/{id}", h.DeleteDoctorVisit)
	})

	r.Route("/temperatures", func(r chi.Router) {
		r.Get("/", h.ListTemperatures)
		r.Post("/", h.CreateTemperature)
		r.Delete("/{id}", h.DeleteTemperature)
	})

	r.Route("/milestones", func(r chi.Router) {
		r.Get("/", h.ListMilestones)
		r.Post("/", h.CreateMilestone)
		r.Delete("/{id}", h.DeleteMilestone)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
