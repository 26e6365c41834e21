package http

import (
	"errors"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/validate"
)

func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listIncomes(w, r)
	case http.MethodPost:
		s.createIncome(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleIncomeByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getIncome(w, r)
	case http.MethodDelete:
		s.deleteIncome(w, r)
	default:
		MethodNotAllowedError("GET, DELETE").Write(w)
	}
}

func (s *Server) listIncomes(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	incomes, err := s.store.ListIncomes(r.Context(), identity.UserID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Income list error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("list incomes").Write(w)
		return
	}

	NewResponse().JSON(toIncomePayloads(incomes)).Write(w)
}

func (s *Server) createIncome(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	var in validate.IncomeInput
	if err := DecodeJSON(r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	income, fieldErrs := validate.Income(in)
	if len(fieldErrs) > 0 {
		ValidationErrorResponse(fieldErrs).Write(w)
		return
	}

	// The category must already exist and belong to the caller.
	if _, err := s.store.GetCategory(r.Context(), identity.UserID, income.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			ValidationErrorResponse([]validate.FieldError{
				{Field: "category_id", Message: "unknown category"},
			}).Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category lookup error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("create income").Write(w)
		return
	}

	income.UserID = identity.UserID
	created, err := s.store.CreateIncome(r.Context(), income)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Income create error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("create income").Write(w)
		return
	}

	s.invalidateUserMonths(identity.UserID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Income created",
		log.FieldItemID, created.ID,
		log.FieldUserID, identity.UserID,
		log.FieldAmount, created.Amount.Cents,
		log.FieldOccurrence, string(created.Occurrence))

	NewResponse().Status(http.StatusCreated).JSON(toIncomePayload(created)).Write(w)
}

func (s *Server) getIncome(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	id := PathID(r)
	if id == "" {
		BadRequestError("missing income id").Write(w)
		return
	}

	income, err := s.store.GetIncome(r.Context(), identity.UserID, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			NotFoundError("income not found").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Income fetch error",
			log.FieldError, err, log.FieldItemID, id)
		InternalServerError("get income").Write(w)
		return
	}

	NewResponse().JSON(toIncomePayload(income)).Write(w)
}

func (s *Server) deleteIncome(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	id := PathID(r)
	if id == "" {
		BadRequestError("missing income id").Write(w)
		return
	}

	if err := s.store.DeleteIncome(r.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			NotFoundError("income not found").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Income delete error",
			log.FieldError, err, log.FieldItemID, id)
		InternalServerError("delete income").Write(w)
		return
	}

	s.invalidateUserMonths(identity.UserID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Income deleted",
		log.FieldItemID, id, log.FieldUserID, identity.UserID)

	NewResponse().Status(http.StatusNoContent).Write(w)
}
