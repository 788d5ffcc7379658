package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	service "github.com/okian/bounceland/internal/app"
	"github.com/okian/bounceland/internal/domain/types"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	uploadField     = "file"
)

// TableDependencies defines the interface for table import and export.
type TableDependencies interface {
	Export(ctx context.Context, format string) ([]byte, error)
	Import(ctx context.Context, caller string, r io.Reader) (types.ImportResponse, error)
	Reset(ctx context.Context, caller string) ([]byte, error)
}

// TableHandler handles export, import and reset requests.
type TableHandler struct {
	deps      TableDependencies
	maxUpload int64
}

// NewTableHandler creates a new table handler.
func NewTableHandler(deps TableDependencies, maxUpload int64) *TableHandler {
	return &TableHandler{deps: deps, maxUpload: maxUpload}
}

// HandleExport handles GET /bounceland/export?format=csv|xlsx requests.
func (h *TableHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = service.FormatCSV
	}
	data, err := h.deps.Export(r.Context(), format)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeFile(w, "bounceland."+format, format, data)
}

// HandleImport handles POST /bounceland/import requests. The table is the raw
// body or the "file" part of a multipart form.
func (h *TableHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := caller(r)
	if err != nil {
		writeFailure(w, NewKind(op, err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	body, err := upload(r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, WrapKind(op, ErrTooLarge, err))
			return
		}
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Import(r.Context(), id, bytes.NewReader(data))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleReset handles POST /bounceland/reset requests and returns the backup.
func (h *TableHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := caller(r)
	if err != nil {
		writeFailure(w, NewKind(op, err))
		return
	}
	backup, err := h.deps.Reset(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeFile(w, "bounceland-backup.csv", service.FormatCSV, backup)
}

func upload(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, WrapKind("upload", ErrBadRequest, err)
	}
	return file, nil
}

func writeFile(w http.ResponseWriter, name, format string, data []byte) {
	ct := contentTypeCSV
	if format == service.FormatXLSX {
		ct = contentTypeXLSX
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
