package http

import (
	"net/http"

	"bilancio/internal/amqp"
	"bilancio/internal/log"
)

// handleMonth computes the calendar view for one month: every income
// and bill occurrence falling inside it plus totals.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	year, month, err := MonthPath(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	view, err := s.getMonthView(r.Context(), identity.UserID, year, month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Month view error",
			log.FieldError, err,
			log.FieldUserID, identity.UserID,
			log.FieldYear, year,
			log.FieldMonth, month)
		InternalServerError("build month view").Write(w)
		return
	}

	NewResponse().JSON(toMonthPayload(view)).Write(w)
}

// handleMonthExport queues the month for export to the configured
// sink. The export worker picks the request up from the queue.
func (s *Server) handleMonthExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	year, month, err := MonthPath(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if s.publisher == nil {
		ErrorResponse(http.StatusServiceUnavailable, "export not configured").Write(w)
		return
	}

	msg := amqp.NewReportRequest(identity.UserID, year, month)
	if err := s.publisher.PublishReportRequest(r.Context(), msg); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Report request publish error",
			log.FieldError, err,
			log.FieldUserID, identity.UserID,
			log.FieldYear, year,
			log.FieldMonth, month)
		InternalServerError("queue export").Write(w)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Report export queued",
		log.FieldUserID, identity.UserID,
		log.FieldYear, year,
		log.FieldMonth, month)

	NewResponse().Status(http.StatusAccepted).JSON(map[string]any{
		"status": "queued",
		"year":   year,
		"month":  month,
	}).Write(w)
}
