package http

import (
	"errors"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/validate"
)

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBills(w, r)
	case http.MethodPost:
		s.createBill(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleBillByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getBill(w, r)
	case http.MethodDelete:
		s.deleteBill(w, r)
	default:
		MethodNotAllowedError("GET, DELETE").Write(w)
	}
}

func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	bills, err := s.store.ListBills(r.Context(), identity.UserID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Bill list error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("list bills").Write(w)
		return
	}

	NewResponse().JSON(toBillPayloads(bills)).Write(w)
}

func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	var in validate.BillInput
	if err := DecodeJSON(r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	bill, fieldErrs := validate.Bill(in)
	if len(fieldErrs) > 0 {
		ValidationErrorResponse(fieldErrs).Write(w)
		return
	}

	if _, err := s.store.GetCategory(r.Context(), identity.UserID, bill.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			ValidationErrorResponse([]validate.FieldError{
				{Field: "category_id", Message: "unknown category"},
			}).Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category lookup error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("create bill").Write(w)
		return
	}

	bill.UserID = identity.UserID
	created, err := s.store.CreateBill(r.Context(), bill)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Bill create error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("create bill").Write(w)
		return
	}

	s.invalidateUserMonths(identity.UserID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Bill created",
		log.FieldItemID, created.ID,
		log.FieldUserID, identity.UserID,
		log.FieldAmount, created.Amount.Cents)

	NewResponse().Status(http.StatusCreated).JSON(toBillPayload(created)).Write(w)
}

func (s *Server) getBill(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	id := PathID(r)
	if id == "" {
		BadRequestError("missing bill id").Write(w)
		return
	}

	bill, err := s.store.GetBill(r.Context(), identity.UserID, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			NotFoundError("bill not found").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Bill fetch error",
			log.FieldError, err, log.FieldItemID, id)
		InternalServerError("get bill").Write(w)
		return
	}

	NewResponse().JSON(toBillPayload(bill)).Write(w)
}

func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	id := PathID(r)
	if id == "" {
		BadRequestError("missing bill id").Write(w)
		return
	}

	if err := s.store.DeleteBill(r.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			NotFoundError("bill not found").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Bill delete error",
			log.FieldError, err, log.FieldItemID, id)
		InternalServerError("delete bill").Write(w)
		return
	}

	s.invalidateUserMonths(identity.UserID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Bill deleted",
		log.FieldItemID, id, log.FieldUserID, identity.UserID)

	NewResponse().Status(http.StatusNoContent).Write(w)
}
