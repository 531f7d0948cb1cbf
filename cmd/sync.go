package main

import (
	"context"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun runs a full Jamendo catalog synchronization.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := r.newSyncEngine(db)
	if err != nil {
		return err
	}

	r.logger.Info("starting synchronization", "service", models.ServiceJamendo)
	r.writePlain("Starting catalog synchronization...\n\n")

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.PlanRun:
				r.writePlain("🗓  %s\n", update.Message)
			case tasks.FetchArtists, tasks.FetchAlbums, tasks.FetchSongs:
				r.writePlain("📥 [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.FinishRun:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	run, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Synchronization Run")
	r.writePlain("Service: %s\n", run.Service())
	r.writePlain("Status: %s\n", run.Status())
	r.writePlain("Started: %s\n", run.StartedAt().Format(time.RFC3339))
	if run.Status() == models.RunFailed {
		r.writePlain("Failure: %s\n", run.Exception())
	}

	return nil
}

// SyncRuns lists recorded synchronization runs, newest first.
func (r *Runner) SyncRuns(ctx context.Context, cmd *cli.Command) error {
	service := cmd.String("service")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := newStore(db).runs.List(service)
	if err != nil {
		return err
	}

	if useJSON {
		payload := make([]map[string]any, 0, len(runs))
		for _, run := range runs {
			entry := map[string]any{
				"id":         run.ID(),
				"service":    run.Service(),
				"status":     run.Status(),
				"started_at": run.StartedAt().Format(time.RFC3339),
			}
			if run.Exception() != "" {
				entry["exception"] = run.Exception()
			}
			payload = append(payload, entry)
		}
		return r.writeJSON(payload, pretty)
	}

	if len(runs) == 0 {
		r.writePlain("No synchronization runs recorded.\n")
		return nil
	}

	r.writePlainHeader("Synchronization Runs")
	for _, run := range runs {
		r.writePlain("%s  %-8s %-9s %s\n",
			run.StartedAt().Format("2006-01-02 15:04:05"), run.Service(), run.Status(), run.ID())
		if run.Exception() != "" {
			r.writePlain("    ↳ %s\n", run.Exception())
		}
	}

	return nil
}
