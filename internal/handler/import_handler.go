package handler

import (
	"net/http"

	"go-user-admin/internal/service"
	"go-user-admin/pkg/apierror"
)

// 5 MB is plenty for a credentials CSV.
const maxImportSize = 5 << 20

type ImportHandler struct {
	service *service.UserService
}

func NewImportHandler(service *service.UserService) *ImportHandler {
	return &ImportHandler{service: service}
}

// ImportUsers accepts a multipart upload under the "file" field containing
// CSV rows of username,password[,is_admin] and creates the accounts in bulk.
func (h *ImportHandler) ImportUsers(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, apierror.BadRequest("invalid multipart body", err.Error()))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, apierror.BadRequest("missing file field", ""))
		return
	}
	defer file.Close()

	result, err := h.service.ImportCSV(r.Context(), file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}
