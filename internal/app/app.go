package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/gofraud/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkglog"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkguid"
)

// App owns the process lifetime: config, shared libraries, the HTTP server
// and the closers registered by modules.
type App struct {
	// ctx is the root of every background ingestion; canceled on shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	config pkgconfig.Config

	uuid      pkguid.StringID
	goroutine *pkgroutine.Manager

	router     *pkgrouter.Router
	httpServer *http.Server

	closerFn map[string]func(context.Context) error
}

func New() *App {
	pkglog.InitLogging()

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	slog.Info("application initialized", "service", pkglog.ServiceName, "closers", len(app.closerFn))

	return app
}
