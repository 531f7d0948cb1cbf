package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/repositories"
	"github.com/outofbits/ccatalog/internal/shared"
)

// SyncEngine defines operations for synchronizing the local catalog with a
// remote music service.
type SyncEngine interface {
	// Run performs a full catalog synchronization by harvesting artists,
	// albums and songs to exhaustion and reconciling every record.
	//
	// The attempt is tracked as a sync run. Run returns an error only when
	// the run itself cannot be recorded; a failed harvest is reported
	// through the returned run's status and exception message.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.SyncRun, error)
}

// CatalogEngine implements SyncEngine for the Jamendo catalog.
type CatalogEngine struct {
	ingestor *Ingestor
	runs     *repositories.SyncRunRepository
	logger   *log.Logger
}

// NewCatalogEngine creates a CatalogEngine with the provided ingestor and run repository.
func NewCatalogEngine(ingestor *Ingestor, runs *repositories.SyncRunRepository, logger *log.Logger) *CatalogEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CatalogEngine{
		ingestor: ingestor,
		runs:     runs,
		logger:   shared.WithLogger(logger, "component", "sync"),
	}
}

// Run implements [SyncEngine].
func (e *CatalogEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.SyncRun, error) {
	run := models.NewSyncRun(0, models.ServiceJamendo)
	run.SetStatus(models.RunRunning)

	e.sendProgress(progress, planRunUpdate(run.Service()))

	// The row is written before any harvesting so a crashed process leaves
	// a visible Running run behind.
	if err := e.runs.Create(run); err != nil {
		return nil, err
	}

	var stats IngestStats
	err := e.harvest(ctx, progress, &stats)
	if err != nil {
		e.logger.Error("synchronization failed", "run", run.ID(), "error", err)
		run.SetStatus(models.RunFailed)
		run.SetException(err.Error())
	} else {
		run.SetStatus(models.RunFinished)
	}

	if err := e.runs.Update(run); err != nil {
		return nil, err
	}

	e.sendProgress(progress, finishRunUpdate(run.Status(), stats.Ingested, stats.Skipped))
	e.logger.Info("synchronization ended", "run", run.ID(), "status", run.Status(),
		"ingested", stats.Ingested, "skipped", stats.Skipped)

	return run, nil
}

func (e *CatalogEngine) harvest(ctx context.Context, progress chan<- ProgressUpdate, total *IngestStats) error {
	e.sendProgress(progress, fetchArtistsUpdate())
	stats, err := e.ingestor.IngestArtists(ctx)
	*total = total.add(stats)
	if err != nil {
		return err
	}

	e.sendProgress(progress, fetchAlbumsUpdate())
	stats, err = e.ingestor.IngestAlbums(ctx)
	*total = total.add(stats)
	if err != nil {
		return err
	}

	e.sendProgress(progress, fetchSongsUpdate())
	stats, err = e.ingestor.IngestSongs(ctx)
	*total = total.add(stats)
	if err != nil {
		return err
	}

	return nil
}

func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
