package entrypoint

import (
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mrlokans/storyhub/internal/audit"
	"github.com/mrlokans/storyhub/internal/categories"
	"github.com/mrlokans/storyhub/internal/config"
	"github.com/mrlokans/storyhub/internal/database"
	auditrepo "github.com/mrlokans/storyhub/internal/database/audit"
	catstore "github.com/mrlokans/storyhub/internal/database/categories"
	"github.com/mrlokans/storyhub/internal/database/contentsources"
	"github.com/mrlokans/storyhub/internal/database/ebooks"
	"github.com/mrlokans/storyhub/internal/database/settings"
	"github.com/mrlokans/storyhub/internal/importers"
	"github.com/mrlokans/storyhub/internal/mapping"
	"github.com/mrlokans/storyhub/internal/metrics"
	"github.com/mrlokans/storyhub/internal/parsers"
	"github.com/mrlokans/storyhub/internal/settingsstore"
	"github.com/mrlokans/storyhub/internal/sources"
	"github.com/mrlokans/storyhub/internal/storage"
)

// App holds the long-lived services shared by the server and the CLI commands.
type App struct {
	DB       *database.Database
	Settings *settingsstore.SettingsStore
	AuditLog *audit.Service
	Auditor  *audit.Auditor // nil unless responses are captured

	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	Taxonomy     categories.Taxonomy
	Templates    mapping.Templates
	SourceStore  *contentsources.Repository
	Sources      *sources.Service
	Files        *storage.Local
	EbookStore   *ebooks.Repository
	EbookImports *importers.Pipeline
}

// NewApp opens the database and wires the services on top of it.
func NewApp(cfg *config.Config, opts ...database.Option) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	templates := mapping.DefaultTemplates()
	if cfg.Sources.TemplatesFile != "" {
		templates, err = mapping.LoadTemplateOverrides(templates, cfg.Sources.TemplatesFile)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Printf("Loaded mapping template overrides from %s", cfg.Sources.TemplatesFile)
	}

	app := &App{
		DB:        db,
		Settings:  settingsstore.New(settings.NewRepository(db.DB)),
		AuditLog:  audit.NewService(auditrepo.NewRepository(db.DB)),
		Registry:  prometheus.NewRegistry(),
		Taxonomy:  categories.DefaultTaxonomy(),
		Templates: templates,
	}
	app.Metrics = metrics.NewCollector(app.Registry)
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	serviceOpts := []sources.Option{
		sources.WithTaxonomy(app.Taxonomy),
		sources.WithTemplates(templates),
		sources.WithSyncLogger(app.AuditLog),
		sources.WithMetrics(app.Metrics),
	}
	if cfg.Sources.CaptureResponses {
		app.Auditor = audit.NewAuditor(cfg.Audit.Dir)
		serviceOpts = append(serviceOpts, sources.WithEnvelopeRecorder(app.Auditor))
		log.Printf("Capturing source responses to %s", cfg.Audit.Dir)
	}

	client := sources.NewClient(cfg.Sources.RequestTimeout, sources.WithMaxRetries(cfg.Sources.MaxRetries))
	app.SourceStore = contentsources.NewRepository(db.DB)
	app.Sources = sources.NewService(app.SourceStore, catstore.NewRepository(db.DB), client, serviceOpts...)

	app.Files = storage.NewLocal(cfg.Storage.BooksDir)
	app.EbookStore = ebooks.NewRepository(db.DB)
	app.EbookImports = importers.NewPipeline(app.Files, parsers.NewChapterParser(), app.EbookStore)

	return app, nil
}

// RegisterSources loads the source definitions in dir and upserts them.
func (a *App) RegisterSources(dir string) (int, error) {
	srcs, err := sources.NewLoader(dir, a.Templates).LoadAll()
	if err != nil {
		return 0, err
	}
	if err := sources.RegisterAll(a.SourceStore, srcs); err != nil {
		return 0, err
	}
	return len(srcs), nil
}

// Close waits for pending audit writes and closes the database.
func (a *App) Close() error {
	a.AuditLog.Wait()
	return a.DB.Close()
}
