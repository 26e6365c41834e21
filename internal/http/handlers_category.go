package http

import (
	"errors"
	"net/http"
	"strconv"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/validate"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listCategories(w, r)
	case http.MethodPost:
		s.createCategory(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getCategory(w, r)
	case http.MethodDelete:
		s.deleteCategory(w, r)
	default:
		MethodNotAllowedError("GET, DELETE").Write(w)
	}
}

// categoryPathID parses the numeric {id} segment.
func categoryPathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(PathID(r), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid category id")
	}
	return id, nil
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	categories, err := s.store.ListCategories(r.Context(), identity.UserID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category list error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("list categories").Write(w)
		return
	}

	NewResponse().JSON(toCategoryPayloads(categories)).Write(w)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	var in validate.CategoryInput
	if err := DecodeJSON(r, &in); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	category, fieldErrs := validate.Category(in)
	if len(fieldErrs) > 0 {
		ValidationErrorResponse(fieldErrs).Write(w)
		return
	}

	category.UserID = identity.UserID
	created, err := s.store.CreateCategory(r.Context(), category)
	if err != nil {
		if errors.Is(err, core.ErrAlreadyExists) {
			ConflictError("category already exists").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category create error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("create category").Write(w)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Category created",
		log.FieldItemID, created.ID,
		log.FieldUserID, identity.UserID,
		log.FieldCategory, created.Name)

	NewResponse().Status(http.StatusCreated).JSON(toCategoryPayload(created)).Write(w)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	id, err := categoryPathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	category, err := s.store.GetCategory(r.Context(), identity.UserID, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			NotFoundError("category not found").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category fetch error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("get category").Write(w)
		return
	}

	NewResponse().JSON(toCategoryPayload(category)).Write(w)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		UnauthorizedError().Write(w)
		return
	}

	id, err := categoryPathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if err := s.store.DeleteCategory(r.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			NotFoundError("category not found").Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category delete error",
			log.FieldError, err, log.FieldUserID, identity.UserID)
		InternalServerError("delete category").Write(w)
		return
	}

	// Month views resolve category names at read time.
	s.invalidateUserMonths(identity.UserID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Category deleted",
		log.FieldItemID, id, log.FieldUserID, identity.UserID)

	NewResponse().Status(http.StatusNoContent).Write(w)
}
