package quotations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quotedesk/quotedesk/internal/platform/httpx"
	"github.com/quotedesk/quotedesk/internal/rbac"
	"github.com/quotedesk/quotedesk/internal/shared"
)

// PDFRenderer produces the printable quote document.
type PDFRenderer interface {
	RenderQuote(ctx context.Context, quotation *Quotation) ([]byte, error)
}

// EmailEnqueuer schedules the quote-email background task.
type EmailEnqueuer interface {
	EnqueueQuoteEmail(ctx context.Context, quotationID int64, to string) error
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	pdf       PDFRenderer
	email     EmailEnqueuer
	rbac      rbac.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer, email EmailEnqueuer, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		pdf:       pdf,
		email:     email,
		rbac:      rbac,
		validator: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := h.parseListRequest(r)
	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotations": items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	quotation, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotationResponse(quotation))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if fields, ok := h.validateStruct(req); !ok {
		httpx.ProblemFields(w, http.StatusBadRequest, "Validation Failed", fields)
		return
	}
	quotation, err := h.service.Create(r.Context(), req, h.currentUserID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quotationResponse(quotation))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if fields, ok := h.validateStruct(req); !ok {
		httpx.ProblemFields(w, http.StatusBadRequest, "Validation Failed", fields)
		return
	}
	quotation, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotationResponse(quotation))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Submit)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

func (h *Handler) MarkOrderReceived(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkOrderReceived)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (*Quotation, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	quotation, err := fn(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotationResponse(quotation))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	quotation, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	doc, err := h.pdf.RenderQuote(r.Context(), quotation)
	if err != nil {
		h.logger.Error("render quote pdf", slog.Int64("quotation_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Unavailable", "quote document could not be rendered")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+quotation.QuotationNumber+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

type sendEmailRequest struct {
	To string `json:"to" validate:"required,email"`
}

func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req sendEmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if fields, ok := h.validateStruct(req); !ok {
		httpx.ProblemFields(w, http.StatusBadRequest, "Validation Failed", fields)
		return
	}
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	if err := h.email.EnqueueQuoteEmail(r.Context(), id, req.To); err != nil {
		h.logger.Error("enqueue quote email", slog.Int64("quotation_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}

func (h *Handler) validateStruct(v any) (map[string]string, bool) {
	err := h.validator.Struct(v)
	if err == nil {
		return nil, true
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "failed " + fe.Tag() + " validation"
		}
	}
	return fields, false
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "quotation not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Status", err.Error())
	case errors.Is(err, ErrDuplicateReference):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "quotation reference already exists")
	case errors.Is(err, ErrDuplicateNumber), errors.Is(err, ErrNumberExhausted):
		httpx.Problem(w, http.StatusConflict, "Conflict", "quotation number could not be allocated")
	default:
		h.logger.Error("quotations handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// quotationResponse adds the grand_total alias alongside total_amount.
// Both labels expose the single stored figure.
func quotationResponse(q *Quotation) map[string]any {
	return map[string]any{
		"quotation":   q,
		"grand_total": q.GrandTotal(),
	}
}

func (h *Handler) parseListRequest(r *http.Request) ListQuotationsRequest {
	q := r.URL.Query()
	req := ListQuotationsRequest{Search: q.Get("search")}
	req.Page, _ = strconv.Atoi(q.Get("page"))
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	if v := q.Get("status"); v != "" {
		status := Status(v)
		req.Status = &status
	}
	if v := q.Get("account_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.AccountID = &id
		}
	}
	if t := parseDate(q.Get("date_from")); t != nil {
		req.DateFrom = t
	}
	if t := parseDate(q.Get("date_to")); t != nil {
		req.DateTo = t
	}
	return req
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}
