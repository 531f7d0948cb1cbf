package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/outofbits/ccatalog/internal/repositories"
	"github.com/outofbits/ccatalog/internal/search"
	"github.com/outofbits/ccatalog/internal/services"
	"github.com/outofbits/ccatalog/internal/shared"
	"github.com/outofbits/ccatalog/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	catalog services.Catalog
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, syncCommand, searchCommand, exportCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger, e.g. for redirecting logs to a file
// while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// store bundles every repository over one database handle.
type store struct {
	artists  *repositories.ArtistRepository
	albums   *repositories.AlbumRepository
	songs    *repositories.SongRepository
	tags     *repositories.TagRepository
	sources  *repositories.SourceRepository
	licenses *repositories.LicenseRepository
	runs     *repositories.SyncRunRepository
}

func newStore(db *sql.DB) store {
	return store{
		artists:  repositories.NewArtistRepository(db),
		albums:   repositories.NewAlbumRepository(db),
		songs:    repositories.NewSongRepository(db),
		tags:     repositories.NewTagRepository(db),
		sources:  repositories.NewSourceRepository(db),
		licenses: repositories.NewLicenseRepository(db),
		runs:     repositories.NewSyncRunRepository(db),
	}
}

// openDatabase opens the configured catalog database with the configured pool
// settings. The caller owns the handle.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// resolveCatalog returns the injected catalog client or constructs one from
// the configuration.
func (r *Runner) resolveCatalog() (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	catalog, err := services.NewJamendoService(r.config.Catalog, r.logger)
	if err != nil {
		return nil, err
	}
	r.catalog = catalog
	return catalog, nil
}

// newSyncEngine wires the ingestion pipeline over the given database handle.
func (r *Runner) newSyncEngine(db *sql.DB) (tasks.SyncEngine, error) {
	catalog, err := r.resolveCatalog()
	if err != nil {
		return nil, err
	}

	s := newStore(db)
	ingestor := tasks.NewIngestor(catalog, s.artists, s.albums, s.songs, s.tags, s.sources, s.licenses, r.logger)
	return tasks.NewCatalogEngine(ingestor, s.runs, r.logger), nil
}

// newSearchEngine wires the search engine over the given database handle.
func (r *Runner) newSearchEngine(db *sql.DB) *search.Engine {
	s := newStore(db)
	cache := search.NewCache(r.config.Search.TTL())
	return search.NewEngine(s.artists, s.albums, s.songs, s.tags, cache, r.config.Search.MaxResults, r.logger)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
