package quotations

import (
	"github.com/go-chi/chi/v5"

	"github.com/quotedesk/quotedesk/internal/shared"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermQuotationView))
		r.Get("/quotations", h.List)
		r.Get("/quotations/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuotationCreate))
		r.Post("/quotations", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuotationEdit))
		r.Put("/quotations/{id}", h.Update)
		r.Post("/quotations/{id}/submit", h.Submit)
		r.Post("/quotations/{id}/order-received", h.MarkOrderReceived)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuotationApprove))
		r.Post("/quotations/{id}/approve", h.Approve)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuotationReject))
		r.Post("/quotations/{id}/reject", h.Reject)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuotationDelete))
		r.Delete("/quotations/{id}", h.Delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermQuotationPrint))
		r.Get("/quotations/{id}/pdf", h.PDF)
		r.Post("/quotations/{id}/send", h.SendEmail)
	})
}
