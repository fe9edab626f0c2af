package importer

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/org-directory/internal/auth"
	"github.com/frahmantamala/org-directory/internal/transport"
	"github.com/frahmantamala/org-directory/pkg/logger"
)

// maxUploadBytes caps the multipart form we are willing to buffer.
const maxUploadBytes = 10 << 20

type ServiceAPI interface {
	Import(ctx context.Context, actor auth.Principal, r io.Reader) (*Summary, error)
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

// Import accepts a multipart upload with the workbook under the "file" field.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	summary, svcErr := h.Service.Import(r.Context(), *p, file)
	if svcErr != nil {
		h.WriteAppError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}
