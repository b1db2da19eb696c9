package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/ingest/page"
	"github.com/shandysiswandi/gofraud/internal/ingest/usecase"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgrouter"
)

type uc interface {
	Upload(ctx context.Context, file usecase.File) (usecase.UploadResult, error)
	Status(ctx context.Context, uploadID string) (entity.Upload, error)
	Persisted(ctx context.Context) (usecase.PersistedResult, error)
	ClearPersisted(ctx context.Context) error
}

type view interface {
	Snapshot() page.State
	ToggleSidebar()
	ClickOutside(insideSidebar, onToggle bool, viewportWidth int)
	Resize(viewportWidth int)
}

// Config bounds what the endpoints accept.
type Config struct {
	MaxUploadBytes int64
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, pg view, metrics http.Handler, cfg Config) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	end := &HTTPEndpoint{uc: uc, page: pg, maxUploadBytes: cfg.MaxUploadBytes}

	r.POST("/uploads", end.CreateUpload) // multipart "file" or raw body with ?name=
	r.GET("/uploads/:id", end.GetUpload, pkgrouter.MiddlewareNoStore)

	r.GET("/page", end.GetPage, pkgrouter.MiddlewareNoStore)
	r.POST("/page/sidebar", end.Sidebar)

	r.GET("/records", end.GetRecords)
	r.DELETE("/records", end.DeleteRecords)

	if metrics != nil {
		r.Handle(http.MethodGet, "/metrics", metrics)
	}
}
