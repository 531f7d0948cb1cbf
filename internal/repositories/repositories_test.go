package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createTestArtist(t *testing.T, repo *ArtistRepository, name string, externalID int64) *models.PersistedArtist {
	t.Helper()

	artist := models.NewPersistedArtist(0, models.Artist{Name: name, ExternalID: externalID})
	if err := repo.Create(artist); err != nil {
		t.Fatalf("failed to create artist: %v", err)
	}
	return artist
}

func TestArtistRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		artist := createTestArtist(t, repo, "Lorem Guitars", 501)

		if artist.ID() == "" {
			t.Error("artist ID should be set after creation")
		}
		if artist.Sequence() == 0 {
			t.Error("artist sequence should be set after creation")
		}
	})

	t.Run("GetByExternalID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		artist := createTestArtist(t, repo, "Lorem Guitars", 501)

		retrieved, err := repo.GetByExternalID(501)
		if err != nil {
			t.Fatalf("failed to get artist by external id: %v", err)
		}
		if retrieved.ID() != artist.ID() {
			t.Errorf("expected ID %s, got %s", artist.ID(), retrieved.ID())
		}
		if retrieved.Name() != "Lorem Guitars" {
			t.Errorf("expected name Lorem Guitars, got %s", retrieved.Name())
		}
	})

	t.Run("GetByExternalIDNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		_, err := repo.GetByExternalID(999)
		if !errors.Is(err, shared.ErrEntityNotFound) {
			t.Errorf("expected ErrEntityNotFound, got %v", err)
		}
	})

	t.Run("ZeroExternalIDNotUnique", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		createTestArtist(t, repo, "First Local", 0)
		createTestArtist(t, repo, "Second Local", 0)

		artists, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if len(artists) != 2 {
			t.Errorf("expected 2 artists without external ids, got %d", len(artists))
		}
	})

	t.Run("GetUniqueByName", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		artist := createTestArtist(t, repo, "Lorem Guitars", 0)

		retrieved, err := repo.GetUniqueByName("Lorem Guitars")
		if err != nil {
			t.Fatalf("failed to get artist by name: %v", err)
		}
		if retrieved.ID() != artist.ID() {
			t.Errorf("expected ID %s, got %s", artist.ID(), retrieved.ID())
		}
	})

	t.Run("GetUniqueByNameAmbiguous", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		createTestArtist(t, repo, "Lorem Guitars", 0)
		createTestArtist(t, repo, "Lorem Guitars", 0)

		_, err := repo.GetUniqueByName("Lorem Guitars")
		if !errors.Is(err, shared.ErrReconciliation) {
			t.Errorf("expected ErrReconciliation, got %v", err)
		}
	})

	t.Run("GetUniqueByNameNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		_, err := repo.GetUniqueByName("Nobody")
		if !errors.Is(err, shared.ErrEntityNotFound) {
			t.Errorf("expected ErrEntityNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		artist := createTestArtist(t, repo, "Lorem Guitars", 0)

		artist.SetBio("session guitarist collective")
		if err := repo.Update(artist); err != nil {
			t.Fatalf("failed to update artist: %v", err)
		}

		retrieved, err := repo.Get(artist.ID())
		if err != nil {
			t.Fatalf("failed to get artist: %v", err)
		}
		if retrieved.Bio() != "session guitarist collective" {
			t.Errorf("expected updated bio, got %q", retrieved.Bio())
		}
	})

	t.Run("Search", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewArtistRepository(db)
		createTestArtist(t, repo, "Lorem Guitars", 0)
		createTestArtist(t, repo, "Ipsum Brass", 0)

		results, err := repo.Search("guitar", 10)
		if err != nil {
			t.Fatalf("failed to search artists: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Name() != "Lorem Guitars" {
			t.Errorf("expected Lorem Guitars, got %s", results[0].Name())
		}
	})
}

func TestAlbumRepository(t *testing.T) {
	t.Run("CreateAndGetByExternalID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		artists := NewArtistRepository(db)
		artist := createTestArtist(t, artists, "Lorem Guitars", 501)

		repo := NewAlbumRepository(db)
		album := models.NewPersistedAlbum(0, artist.ID(), models.Album{Name: "Dusty Roads", ExternalID: 9001})
		if err := repo.Create(album); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		retrieved, err := repo.GetByExternalID(9001)
		if err != nil {
			t.Fatalf("failed to get album by external id: %v", err)
		}
		if retrieved.ArtistID() != artist.ID() {
			t.Errorf("expected artist id %s, got %s", artist.ID(), retrieved.ArtistID())
		}
	})

	t.Run("GetUniqueByNameScopedToArtist", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		artists := NewArtistRepository(db)
		first := createTestArtist(t, artists, "Lorem Guitars", 0)
		second := createTestArtist(t, artists, "Ipsum Brass", 0)

		repo := NewAlbumRepository(db)
		if err := repo.Create(models.NewPersistedAlbum(0, first.ID(), models.Album{Name: "Dusty Roads"})); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}
		if err := repo.Create(models.NewPersistedAlbum(0, second.ID(), models.Album{Name: "Dusty Roads"})); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		retrieved, err := repo.GetUniqueByName("Dusty Roads", first.ID())
		if err != nil {
			t.Fatalf("failed to get album by name: %v", err)
		}
		if retrieved.ArtistID() != first.ID() {
			t.Errorf("expected album of artist %s, got %s", first.ID(), retrieved.ArtistID())
		}
	})

	t.Run("ListByArtist", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		artists := NewArtistRepository(db)
		artist := createTestArtist(t, artists, "Lorem Guitars", 0)

		repo := NewAlbumRepository(db)
		if err := repo.Create(models.NewPersistedAlbum(0, artist.ID(), models.Album{Name: "Dusty Roads"})); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}
		if err := repo.Create(models.NewPersistedAlbum(0, artist.ID(), models.Album{Name: "Night Drive"})); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		albums, err := repo.List(map[string]any{"artist_id": artist.ID()})
		if err != nil {
			t.Fatalf("failed to list albums: %v", err)
		}
		if len(albums) != 2 {
			t.Errorf("expected 2 albums, got %d", len(albums))
		}
	})
}

func TestSongRepository(t *testing.T) {
	setupSong := func(t *testing.T, db *sql.DB, externalID int64) (*SongRepository, *models.PersistedSong) {
		t.Helper()

		artists := NewArtistRepository(db)
		artist := createTestArtist(t, artists, "Lorem Guitars", 501)

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, artist.ID(), "", "", models.Song{
			Name:       "Dusty Roads Pt. 1",
			ExternalID: externalID,
			Duration:   214,
		})
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		return repo, song
	}

	t.Run("CreateAndGetByExternalID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo, song := setupSong(t, db, 77001)

		retrieved, err := repo.GetByExternalID(77001)
		if err != nil {
			t.Fatalf("failed to get song by external id: %v", err)
		}
		if retrieved.ID() != song.ID() {
			t.Errorf("expected ID %s, got %s", song.ID(), retrieved.ID())
		}
		if retrieved.Duration() != 214 {
			t.Errorf("expected duration 214, got %d", retrieved.Duration())
		}
	})

	t.Run("TagLinksIdempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo, song := setupSong(t, db, 77001)

		tags := NewTagRepository(db)
		jazz, err := tags.GetOrCreate("jazz")
		if err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}

		if err := repo.AddTag(song.ID(), jazz.ID()); err != nil {
			t.Fatalf("failed to link tag: %v", err)
		}
		if err := repo.AddTag(song.ID(), jazz.ID()); err != nil {
			t.Fatalf("relinking tag should not fail: %v", err)
		}

		linked, err := repo.Tags(song.ID())
		if err != nil {
			t.Fatalf("failed to list song tags: %v", err)
		}
		if len(linked) != 1 {
			t.Errorf("expected 1 linked tag, got %d", len(linked))
		}
	})

	t.Run("SearchByTag", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo, song := setupSong(t, db, 77001)

		tags := NewTagRepository(db)
		jazz, err := tags.GetOrCreate("jazz")
		if err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}
		if err := repo.AddTag(song.ID(), jazz.ID()); err != nil {
			t.Fatalf("failed to link tag: %v", err)
		}

		results, err := repo.Search("no-match-phrase", []string{"jazz"}, 10)
		if err != nil {
			t.Fatalf("failed to search songs: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].ID() != song.ID() {
			t.Errorf("expected song %s, got %s", song.ID(), results[0].ID())
		}
	})

	t.Run("DeleteCascadesSources", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo, song := setupSong(t, db, 77001)

		sources := NewSourceRepository(db)
		source := models.NewPersistedSource(0, song.ID(), models.Source{
			Kind:  models.SourceStream,
			Codec: models.CodecMP3,
			Link:  "https://cdn.example.org/stream/77001?format=mp31",
		})
		if err := sources.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		remaining, err := sources.ListBySong(song.ID())
		if err != nil {
			t.Fatalf("failed to list sources: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("expected sources to cascade, got %d rows", len(remaining))
		}
	})
}

func TestTagRepository(t *testing.T) {
	t.Run("GetOrCreateDeduplicates", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTagRepository(db)
		first, err := repo.GetOrCreate("jazz")
		if err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}
		second, err := repo.GetOrCreate("jazz")
		if err != nil {
			t.Fatalf("failed to get tag: %v", err)
		}

		if first.ID() != second.ID() {
			t.Errorf("expected same tag row, got %s and %s", first.ID(), second.ID())
		}
	})

	t.Run("NamesCaseSensitive", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTagRepository(db)
		if _, err := repo.GetOrCreate("jazz"); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}
		if _, err := repo.GetOrCreate("Jazz"); err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}

		names, err := repo.Names()
		if err != nil {
			t.Fatalf("failed to list tag names: %v", err)
		}
		if len(names) != 2 {
			t.Errorf("expected 2 distinct tags, got %d", len(names))
		}
	})
}

func TestSourceRepository(t *testing.T) {
	t.Run("GetByIdentity", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		artists := NewArtistRepository(db)
		artist := createTestArtist(t, artists, "Lorem Guitars", 0)

		songs := NewSongRepository(db)
		song := models.NewPersistedSong(0, artist.ID(), "", "", models.Song{Name: "Dusty Roads Pt. 1"})
		if err := songs.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		repo := NewSourceRepository(db)
		source := models.NewPersistedSource(0, song.ID(), models.Source{
			Kind:  models.SourceDownload,
			Codec: models.CodecFLAC,
			Link:  "https://cdn.example.org/download/77001/flac",
		})
		if err := repo.Create(source); err != nil {
			t.Fatalf("failed to create source: %v", err)
		}

		retrieved, err := repo.GetByIdentity(models.SourceDownload, models.CodecFLAC, "https://cdn.example.org/download/77001/flac")
		if err != nil {
			t.Fatalf("failed to get source by identity: %v", err)
		}
		if retrieved.ID() != source.ID() {
			t.Errorf("expected ID %s, got %s", source.ID(), retrieved.ID())
		}

		_, err = repo.GetByIdentity(models.SourceStream, models.CodecFLAC, "https://cdn.example.org/download/77001/flac")
		if !errors.Is(err, shared.ErrEntityNotFound) {
			t.Errorf("expected ErrEntityNotFound for different kind, got %v", err)
		}
	})
}

func TestLicenseRepository(t *testing.T) {
	t.Run("GetOrCreate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLicenseRepository(db)
		first, err := repo.GetOrCreate(models.LicenseCCBYNCSA)
		if err != nil {
			t.Fatalf("failed to create license: %v", err)
		}
		second, err := repo.GetOrCreate(models.LicenseCCBYNCSA)
		if err != nil {
			t.Fatalf("failed to get license: %v", err)
		}

		if first.ID() != second.ID() {
			t.Errorf("expected same license row, got %s and %s", first.ID(), second.ID())
		}
	})

	t.Run("RejectsUnknownVariant", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewLicenseRepository(db)
		_, err := repo.GetOrCreate("CC-ZERO")
		if err == nil {
			t.Error("expected validation error for unknown license variant")
		}
	})
}

func TestSyncRunRepository(t *testing.T) {
	t.Run("Lifecycle", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		run := models.NewSyncRun(0, models.ServiceJamendo)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create sync run: %v", err)
		}
		if run.Status() != models.RunPlanned {
			t.Errorf("expected status Planned, got %s", run.Status())
		}

		run.SetStatus(models.RunRunning)
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update sync run: %v", err)
		}

		run.SetStatus(models.RunFailed)
		run.SetException("bad auth")
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update sync run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get sync run: %v", err)
		}
		if retrieved.Status() != models.RunFailed {
			t.Errorf("expected status Failed, got %s", retrieved.Status())
		}
		if retrieved.Exception() != "bad auth" {
			t.Errorf("expected exception message, got %q", retrieved.Exception())
		}
	})

	t.Run("ListFiltersByService", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSyncRunRepository(db)
		if err := repo.Create(models.NewSyncRun(0, models.ServiceJamendo)); err != nil {
			t.Fatalf("failed to create sync run: %v", err)
		}
		if err := repo.Create(models.NewSyncRun(0, models.ServiceGeneral)); err != nil {
			t.Fatalf("failed to create sync run: %v", err)
		}

		runs, err := repo.List(models.ServiceJamendo)
		if err != nil {
			t.Fatalf("failed to list sync runs: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}

		all, err := repo.List("")
		if err != nil {
			t.Fatalf("failed to list sync runs: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 runs, got %d", len(all))
		}
	})
}
