package company

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/company-management/internal/authz"
	"github.com/frahmantamala/company-management/internal/identity"
	"github.com/frahmantamala/company-management/internal/transport"
	"github.com/frahmantamala/company-management/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, ownerID int64, dto CreateCompanyDTO) (*Company, error)
	Get(ctx context.Context, id, ownerID int64) (*Company, error)
	List(ctx context.Context, ownerID int64) ([]*Company, error)
	Update(ctx context.Context, id, ownerID int64, dto UpdateCompanyDTO) (*Company, error)
	Archive(ctx context.Context, id, ownerID int64) (*Company, error)
	Reactivate(ctx context.Context, id, ownerID int64) (*Company, error)
	Delete(ctx context.Context, id, ownerID int64) error
	CheckNameAvailability(ctx context.Context, rawName string) (bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// principal extracts the authenticated identity and applies the admin role
// gate shared by every company endpoint.
func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	principal, ok := identity.FromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	if err := authz.RoleGate(principal, identity.RoleAdmin); err != nil {
		h.WriteDomainError(w, err)
		return nil, false
	}
	return principal, true
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid company ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var dto CreateCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateCompany: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), principal.UserID, dto)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	companies, err := h.Service.List(r.Context(), principal.UserID)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, companies)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), id, principal.UserID)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}

	var dto UpdateCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateCompany: invalid request body", "error", err, "company_id", id)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), id, principal.UserID, dto)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) ArchiveCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}

	archived, err := h.Service.Archive(r.Context(), id, principal.UserID)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, archived)
}

func (h *Handler) ReactivateCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}

	reactivated, err := h.Service.Reactivate(r.Context(), id, principal.UserID)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, reactivated)
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.companyID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id, principal.UserID); err != nil {
		h.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CheckNameAvailability(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	name := r.URL.Query().Get("name")
	available, err := h.Service.CheckNameAvailability(r.Context(), name)
	if err != nil {
		h.WriteDomainError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NameAvailabilityResponse{
		Name:      name,
		Available: available,
	})
}
