package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gofraud/internal/ingest/event"
	"github.com/shandysiswandi/gofraud/internal/ingest/inbound"
	"github.com/shandysiswandi/gofraud/internal/ingest/metrics"
	"github.com/shandysiswandi/gofraud/internal/ingest/page"
	"github.com/shandysiswandi/gofraud/internal/ingest/store"
	"github.com/shandysiswandi/gofraud/internal/ingest/usecase"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	if dep.Config == nil || dep.Router == nil || dep.Goroutine == nil {
		return nil, errors.New("ingest: missing dependency")
	}

	kv, closeKV, err := newKV(dep.Config)
	if err != nil {
		return nil, err
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	eventIDs, err := pkguid.NewSnowflake()
	if err != nil {
		_ = closeKV()
		return nil, fmt.Errorf("ingest: init event ids: %w", err)
	}

	bus := event.NewBus(512)
	consumer := event.NewConsumer(bus, event.JournalHandler{}, event.ConsumerConfig{
		Workers:     int(dep.Config.GetInt("ingest.events.workers")),
		MaxRetries:  int(dep.Config.GetInt("ingest.events.max_retries")),
		BaseBackoff: 200 * time.Millisecond,
	})
	consumer.Start()

	parsers := pkgroutine.NewManager(int(dep.Config.GetInt("ingest.parse.workers")))
	pg := page.New()
	mtr := metrics.New()

	uc, err := usecase.New(usecase.Dependency{
		KV:       kv,
		Uploads:  store.NewUploadRegistry(),
		Display:  pg,
		Events:   bus,
		Runner:   dep.Goroutine,
		Parsers:  parsers,
		ID:       dep.ID,
		EventID:  eventIDs.Strings(),
		Observer: mtr,
		RootCtx:  dep.Context,
		Options:  options(dep.Config),
	})
	if err != nil {
		_ = consumer.Stop(context.Background())
		_ = closeKV()
		return nil, fmt.Errorf("ingest: %w", err)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, pg, mtr.Handler(), inbound.Config{
		MaxUploadBytes: dep.Config.GetInt("ingest.upload.max_bytes"),
	})

	return func(ctx context.Context) error {
		return errors.Join(
			parsers.Wait(),
			consumer.Stop(ctx),
			closeKV(),
		)
	}, nil
}

func newKV(cfg pkgconfig.Config) (usecase.KV, func() error, error) {
	quota := cfg.GetInt("ingest.storage.quota_bytes")

	switch driver := strings.ToLower(strings.TrimSpace(cfg.GetString("ingest.storage.driver"))); driver {
	case "", "memory":
		slog.Info("ingest storage ready", "driver", "memory", "quota_bytes", quota)
		return store.NewMemoryKV(quota), func() error { return nil }, nil
	case "bolt":
		path := cfg.GetString("ingest.storage.bolt_path")
		if path == "" {
			path = "./data/storage.db"
		}
		kv, err := store.OpenBoltKV(path, quota)
		if err != nil {
			return nil, nil, fmt.Errorf("ingest: open bolt storage: %w", err)
		}
		slog.Info("ingest storage ready", "driver", "bolt", "path", path, "quota_bytes", quota)
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("ingest: unknown storage driver %q", driver)
	}
}

// options starts from the defaults and applies every key that is set.
func options(cfg pkgconfig.Config) usecase.Options {
	opts := usecase.DefaultOptions()

	if v := cfg.GetString("ingest.storage.key"); v != "" {
		opts.StorageKey = v
	}
	if v := cfg.GetInts("ingest.storage.ladder"); len(v) > 0 {
		opts.Ladder = v
	} else if raw := cfg.GetString("ingest.storage.ladder"); raw != "" {
		slog.Warn("ignoring unparsable storage ladder, using default", "value", raw, "default", opts.Ladder)
	}
	if v := cfg.GetInt("ingest.storage.last_resort"); v > 0 {
		opts.LastResort = int(v)
	}
	if v := cfg.GetString("ingest.label.field"); v != "" {
		opts.LabelField = v
	}
	if v := cfg.GetString("ingest.label.fraud_value"); v != "" {
		opts.FraudValue = v
	}
	if cfg.IsSet("ingest.parse.delay_ms") {
		if v := cfg.GetInt("ingest.parse.delay_ms"); v >= 0 {
			opts.ParseDelay = time.Duration(v) * time.Millisecond
		}
	}
	if v := cfg.GetInt("ingest.parse.background_threshold_bytes"); v > 0 {
		opts.BackgroundThreshold = v
	}

	return opts
}
