package tasks

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/outofbits/ccatalog/internal/models"
)

func TestCatalogEngine(t *testing.T) {
	t.Run("FinishedRun", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		catalog := &fakeCatalog{records: map[string][]string{
			"artists": {artistRecordJSON},
			"albums":  {albumRecordJSON},
			"tracks":  {songRecordJSON},
		}}

		repos := newTestRepos(db)
		engine := NewCatalogEngine(newTestIngestor(catalog, repos), repos.runs, nil)

		run, err := engine.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if run.Status() != models.RunFinished {
			t.Errorf("expected status Finished, got %s", run.Status())
		}
		if run.Exception() != "" {
			t.Errorf("expected no exception message, got %q", run.Exception())
		}

		persisted, err := repos.runs.Get(run.ID())
		if err != nil {
			t.Fatalf("run was not persisted: %v", err)
		}
		if persisted.Status() != models.RunFinished {
			t.Errorf("expected persisted status Finished, got %s", persisted.Status())
		}
	})

	t.Run("FailedRunKeepsExceptionMessage", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		catalog := &fakeCatalog{err: fmt.Errorf("bad auth")}

		repos := newTestRepos(db)
		engine := NewCatalogEngine(newTestIngestor(catalog, repos), repos.runs, nil)

		run, err := engine.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("a failed harvest must still yield the run row: %v", err)
		}

		if run.Status() != models.RunFailed {
			t.Errorf("expected status Failed, got %s", run.Status())
		}
		if !strings.Contains(run.Exception(), "bad auth") {
			t.Errorf("expected exception message to name the cause, got %q", run.Exception())
		}

		persisted, err := repos.runs.Get(run.ID())
		if err != nil {
			t.Fatalf("run was not persisted: %v", err)
		}
		if persisted.Status() != models.RunFailed {
			t.Errorf("expected persisted status Failed, got %s", persisted.Status())
		}
	})

	t.Run("EmitsProgressUpdates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		catalog := &fakeCatalog{records: map[string][]string{}}

		repos := newTestRepos(db)
		engine := NewCatalogEngine(newTestIngestor(catalog, repos), repos.runs, nil)

		progress := make(chan ProgressUpdate, 16)
		if _, err := engine.Run(context.Background(), progress); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}

		want := []Phase{PlanRun, FetchArtists, FetchAlbums, FetchSongs, FinishRun}
		if len(phases) != len(want) {
			t.Fatalf("expected %d updates, got %d", len(want), len(phases))
		}
		for i, phase := range want {
			if phases[i] != phase {
				t.Errorf("update %d: expected phase %s, got %s", i, phase, phases[i])
			}
		}
	})
}
