package organisation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal/auth"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	"github.com/frahmantamala/org-directory/internal/transport"
	"github.com/frahmantamala/org-directory/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor auth.Principal, dto CreateOrganisationDTO) (*organisationDatamodel.Organisation, error)
	List(ctx context.Context, actor auth.Principal) ([]*organisationDatamodel.Organisation, error)
	Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*organisationDatamodel.Organisation, error)
	Update(ctx context.Context, actor auth.Principal, id uuid.UUID, dto UpdateOrganisationDTO) (*organisationDatamodel.Organisation, error)
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateOrganisationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	org, err := h.Service.Create(r.Context(), *p, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, org)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}

	orgs, err := h.Service.List(r.Context(), *p)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, orgs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "organisationID"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid organisation id")
		return
	}

	org, svcErr := h.Service.Get(r.Context(), *p, id)
	if svcErr != nil {
		h.WriteAppError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "organisationID"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid organisation id")
		return
	}

	var dto UpdateOrganisationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	org, svcErr := h.Service.Update(r.Context(), *p, id, dto)
	if svcErr != nil {
		h.WriteAppError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "organisationID"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid organisation id")
		return
	}

	if svcErr := h.Service.Delete(r.Context(), *p, id); svcErr != nil {
		h.WriteAppError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Organisation deleted successfully"})
}
