package department

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal/auth"
	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	"github.com/frahmantamala/org-directory/internal/transport"
	"github.com/frahmantamala/org-directory/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor auth.Principal, dto CreateDepartmentDTO) (*departmentDatamodel.Department, error)
	List(ctx context.Context, actor auth.Principal) ([]*departmentDatamodel.Department, error)
	Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*departmentDatamodel.Department, error)
	Update(ctx context.Context, actor auth.Principal, id uuid.UUID, dto UpdateDepartmentDTO) (*departmentDatamodel.Department, error)
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error
	AssignManager(ctx context.Context, actor auth.Principal, deptID, userID uuid.UUID) (*departmentDatamodel.Department, error)
	RemoveManager(ctx context.Context, actor auth.Principal, deptID uuid.UUID) (*departmentDatamodel.Department, error)
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

func (h *Handler) departmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "departmentID"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.Create(r.Context(), *p, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}

	depts, err := h.Service.List(r.Context(), *p)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, depts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	dept, err := h.Service.Get(r.Context(), *p, id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	var dto UpdateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.Update(r.Context(), *p, id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), *p, id); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Department deleted successfully"})
}

func (h *Handler) AssignManager(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	dept, svcErr := h.Service.AssignManager(r.Context(), *p, id, userID)
	if svcErr != nil {
		h.WriteAppError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) RemoveManager(w http.ResponseWriter, r *http.Request) {
	p, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	dept, err := h.Service.RemoveManager(r.Context(), *p, id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dept)
}
