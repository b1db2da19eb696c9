package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/ingest/usecase"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgrouter"
)

// DefaultMaxUploadBytes caps one uploaded file.
const DefaultMaxUploadBytes int64 = 256 << 20

type HTTPEndpoint struct {
	uc             uc
	page           view
	maxUploadBytes int64
}

func (h *HTTPEndpoint) CreateUpload(ctx context.Context, r *http.Request) (any, error) {
	name, reader, cleanup, err := extractCSVFile(r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	content, err := readLimited(reader, h.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Upload(ctx, usecase.File{Name: name, Content: content})
	if err != nil {
		return nil, err
	}

	return UploadResponse{UploadID: result.UploadID}, nil
}

func (h *HTTPEndpoint) GetUpload(ctx context.Context, r *http.Request) (any, error) {
	uploadID := pkgrouter.GetParam(ctx, "id")
	if uploadID == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("upload id is required"))
	}

	upload, err := h.uc.Status(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	resp := UploadStatusResponse{
		UploadID:  upload.ID,
		FileName:  upload.FileName,
		SizeBytes: upload.SizeBytes,
		Status:    upload.Status,
		Error:     upload.Err,
		ErrorKind: upload.ErrKind,
		StartedAt: upload.StartedAt,
		EndedAt:   upload.EndedAt,
		Rows:      upload.Rows,
		Storage:   toStorage(upload.Storage),
	}
	if upload.Status == entity.UploadStatusDone {
		resp.Summary = toSummary(upload.Summary)
	}

	return resp, nil
}

func (h *HTTPEndpoint) GetPage(ctx context.Context, r *http.Request) (any, error) {
	return toPage(h.page.Snapshot()), nil
}

func (h *HTTPEndpoint) Sidebar(ctx context.Context, r *http.Request) (any, error) {
	var req SidebarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "toggle":
		h.page.ToggleSidebar()
	case "click_outside":
		h.page.ClickOutside(req.InsideSidebar, req.OnToggle, req.ViewportWidth)
	case "resize":
		h.page.Resize(req.ViewportWidth)
	default:
		return nil, pkgerror.NewInvalidInput(fmt.Errorf("unknown sidebar action %q", req.Action))
	}

	return toPage(h.page.Snapshot()), nil
}

func (h *HTTPEndpoint) GetRecords(ctx context.Context, r *http.Request) (any, error) {
	res, err := h.uc.Persisted(ctx)
	if err != nil {
		return nil, err
	}

	return RecordsResponse{
		Key:     res.Key,
		Records: res.Rows,
		count:   res.Count,
		used:    res.Usage.UsedBytes,
		quota:   res.Usage.QuotaBytes,
	}, nil
}

func (h *HTTPEndpoint) DeleteRecords(ctx context.Context, r *http.Request) (any, error) {
	if err := h.uc.ClearPersisted(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

// extractCSVFile returns the selected file name and its content reader. A
// multipart request without a file part yields an empty name and body, which
// the usecase treats as "no file selected".
func extractCSVFile(r *http.Request) (string, io.Reader, func(), error) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && strings.EqualFold(mediaType, "multipart/form-data") {
			return extractMultipartFile(r)
		}
	}

	name := pkgrouter.GetQuery(r, "name")
	if r.Body == nil {
		return name, strings.NewReader(""), func() {}, nil
	}

	return name, r.Body, func() {}, nil
}

func extractMultipartFile(r *http.Request) (string, io.Reader, func(), error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return "", nil, func() {}, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", strings.NewReader(""), func() {}, nil
			}
			return "", nil, func() {}, pkgerror.NewInvalidFormat()
		}

		if part.FormName() == "file" {
			return part.FileName(), part, func() { _ = part.Close() }, nil
		}
		_ = part.Close()
	}
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}
	if int64(len(content)) > limit {
		return nil, pkgerror.NewTooLarge(fmt.Errorf("file exceeds %d bytes", limit))
	}
	return content, nil
}
