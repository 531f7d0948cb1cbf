package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/repositories"
	"github.com/outofbits/ccatalog/internal/services"
	"github.com/outofbits/ccatalog/internal/shared"
)

const (
	artistRecordJSON = `{"id": "501", "name": "Lorem Guitars", "website": "https://loremguitars.example.org", "image": "https://img.example.org/artist/501", "shareurl": "https://share.example.org/artist/501"}`
	albumRecordJSON  = `{"id": "9001", "name": "Dusty Roads", "artist_id": "501", "artist_name": "Lorem Guitars", "image": "https://img.example.org/album/9001", "shareurl": "https://share.example.org/album/9001", "releasedate": "2014-05-12"}`
	songRecordJSON   = `{"id": "77001", "name": "Dusty Roads Pt. 1", "artist_id": "501", "artist_name": "Lorem Guitars", "album_id": "9001", "album_name": "Dusty Roads", "duration": 214, "image": "https://img.example.org/track/77001", "shareurl": "https://share.example.org/track/77001", "releasedate": "2014-05-12", "audio": "https://cdn.example.org/stream/77001?format=mp31", "audiodownload": "https://cdn.example.org/download/77001/flac", "musicinfo": {"tags": {"genres": ["jazz"], "vartags": ["love"]}}, "licenses": {"ccnc": "true", "ccnd": "false", "ccsa": "true"}}`
)

// fakeCatalog serves canned records per resource, supporting both full
// pagination and single-record lookups by id.
type fakeCatalog struct {
	records map[string][]string
	err     error
}

func (c *fakeCatalog) Name() string { return "fake" }

func (c *fakeCatalog) Call(ctx context.Context, resource string, params url.Values) (*services.Envelope, error) {
	if c.err != nil {
		return nil, c.err
	}

	pool := c.records[resource]

	if id := params.Get("id"); id != "" {
		for _, record := range pool {
			if strings.Contains(record, fmt.Sprintf(`"id": "%s"`, id)) {
				return &services.Envelope{
					Headers: services.Headers{Status: "success", ResultsCount: 1},
					Results: []json.RawMessage{json.RawMessage(record)},
				}, nil
			}
		}
		return &services.Envelope{Headers: services.Headers{Status: "success"}}, nil
	}

	offset, _ := strconv.Atoi(params.Get("offset"))
	if offset >= len(pool) {
		return &services.Envelope{Headers: services.Headers{Status: "success"}}, nil
	}

	results := make([]json.RawMessage, 0, len(pool)-offset)
	for _, record := range pool[offset:] {
		results = append(results, json.RawMessage(record))
	}

	return &services.Envelope{
		Headers: services.Headers{Status: "success", ResultsCount: len(results)},
		Results: results,
	}, nil
}

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

type testRepos struct {
	artists  *repositories.ArtistRepository
	albums   *repositories.AlbumRepository
	songs    *repositories.SongRepository
	tags     *repositories.TagRepository
	sources  *repositories.SourceRepository
	licenses *repositories.LicenseRepository
	runs     *repositories.SyncRunRepository
}

func newTestRepos(db *sql.DB) testRepos {
	return testRepos{
		artists:  repositories.NewArtistRepository(db),
		albums:   repositories.NewAlbumRepository(db),
		songs:    repositories.NewSongRepository(db),
		tags:     repositories.NewTagRepository(db),
		sources:  repositories.NewSourceRepository(db),
		licenses: repositories.NewLicenseRepository(db),
		runs:     repositories.NewSyncRunRepository(db),
	}
}

func newTestIngestor(catalog services.Catalog, repos testRepos) *Ingestor {
	return NewIngestor(catalog, repos.artists, repos.albums, repos.songs, repos.tags, repos.sources, repos.licenses, nil)
}

func TestParseSong(t *testing.T) {
	t.Run("FullRecord", func(t *testing.T) {
		song, err := parseSong(json.RawMessage(songRecordJSON))
		if err != nil {
			t.Fatalf("failed to parse song: %v", err)
		}

		if song.ExternalID != 77001 {
			t.Errorf("expected external id 77001, got %d", song.ExternalID)
		}
		if song.Duration != 214 {
			t.Errorf("expected duration 214, got %d", song.Duration)
		}
		if song.License != models.LicenseCCBYNCSA {
			t.Errorf("expected license CC-BY-NC-SA, got %s", song.License)
		}
		if len(song.Tags) != 2 {
			t.Errorf("expected 2 tags, got %v", song.Tags)
		}

		if len(song.Sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(song.Sources))
		}
		if song.Sources[0].Kind != models.SourceDownload || song.Sources[0].Codec != models.CodecFLAC {
			t.Errorf("expected flac download source, got %+v", song.Sources[0])
		}
		if song.Sources[1].Kind != models.SourceStream || song.Sources[1].Codec != models.CodecMP3 {
			t.Errorf("expected mp3 stream source, got %+v", song.Sources[1])
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		_, err := parseSong(json.RawMessage(`{"name": "No Key"}`))
		if err == nil {
			t.Fatal("expected malformed record error")
		}
	})

	t.Run("MissingName", func(t *testing.T) {
		_, err := parseSong(json.RawMessage(`{"id": "5"}`))
		if err == nil {
			t.Fatal("expected malformed record error")
		}
	})
}

func TestDeriveLicense(t *testing.T) {
	build := func(nc, nd, sa string) songRecord {
		return songRecord{Licenses: &struct {
			CCNC string `json:"ccnc"`
			CCND string `json:"ccnd"`
			CCSA string `json:"ccsa"`
		}{nc, nd, sa}}
	}

	cases := []struct {
		name       string
		record     songRecord
		want       string
	}{
		{"NoBlock", songRecord{}, models.LicenseUnknown},
		{"Plain", build("false", "false", "false"), models.LicenseCCBY},
		{"NonCommercial", build("true", "false", "false"), models.LicenseCCBYNC},
		{"NoDerivatives", build("false", "true", "false"), models.LicenseCCBYND},
		{"ShareAlike", build("false", "false", "true"), models.LicenseCCBYSA},
		{"NonCommercialShareAlike", build("true", "false", "true"), models.LicenseCCBYNCSA},
		{"NonCommercialNoDerivatives", build("true", "true", "false"), models.LicenseCCBYNCND},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveLicense(tc.record); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCodecInference(t *testing.T) {
	t.Run("StreamFormatParameter", func(t *testing.T) {
		if got := streamCodec("https://cdn.example.org/stream/1?format=ogg2"); got != models.CodecOGG {
			t.Errorf("expected ogg, got %s", got)
		}
		if got := streamCodec("https://cdn.example.org/stream/1"); got != models.CodecUnknown {
			t.Errorf("expected unknown without format parameter, got %s", got)
		}
	})

	t.Run("DownloadPath", func(t *testing.T) {
		if got := downloadCodec("https://cdn.example.org/download/1/mp3"); got != models.CodecMP3 {
			t.Errorf("expected mp3, got %s", got)
		}
		if got := downloadCodec("https://cdn.example.org/download/1?format=mp31"); got != models.CodecUnknown {
			t.Errorf("download codec must come from the path, got %s", got)
		}
	})
}

func TestIngestor(t *testing.T) {
	catalog := &fakeCatalog{records: map[string][]string{
		"artists": {artistRecordJSON},
		"albums":  {albumRecordJSON},
		"tracks":  {songRecordJSON},
	}}

	runAll := func(t *testing.T, ing *Ingestor) IngestStats {
		t.Helper()

		var total IngestStats
		for _, pass := range []func(context.Context) (IngestStats, error){
			ing.IngestArtists, ing.IngestAlbums, ing.IngestSongs,
		} {
			stats, err := pass(context.Background())
			if err != nil {
				t.Fatalf("ingestion failed: %v", err)
			}
			total = total.add(stats)
		}
		return total
	}

	t.Run("FullIngestion", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repos := newTestRepos(db)
		runAll(t, newTestIngestor(catalog, repos))

		artist, err := repos.artists.GetByExternalID(501)
		if err != nil {
			t.Fatalf("artist was not ingested: %v", err)
		}

		album, err := repos.albums.GetByExternalID(9001)
		if err != nil {
			t.Fatalf("album was not ingested: %v", err)
		}
		if album.ArtistID() != artist.ID() {
			t.Error("album must be linked to its ingested artist")
		}

		song, err := repos.songs.GetByExternalID(77001)
		if err != nil {
			t.Fatalf("song was not ingested: %v", err)
		}
		if song.ArtistID() != artist.ID() || song.AlbumID() != album.ID() {
			t.Error("song must be linked to its ingested artist and album")
		}

		license, err := repos.licenses.Get(song.LicenseID())
		if err != nil {
			t.Fatalf("failed to load song license: %v", err)
		}
		if license.Type() != models.LicenseCCBYNCSA {
			t.Errorf("expected CC-BY-NC-SA, got %s", license.Type())
		}

		tags, err := repos.songs.Tags(song.ID())
		if err != nil {
			t.Fatalf("failed to load song tags: %v", err)
		}
		if len(tags) != 2 {
			t.Errorf("expected 2 tags, got %d", len(tags))
		}

		sources, err := repos.sources.ListBySong(song.ID())
		if err != nil {
			t.Fatalf("failed to load song sources: %v", err)
		}
		if len(sources) != 2 {
			t.Errorf("expected 2 sources, got %d", len(sources))
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repos := newTestRepos(db)
		ing := newTestIngestor(catalog, repos)
		first := runAll(t, ing)
		second := runAll(t, ing)

		if first.Ingested != 3 {
			t.Errorf("expected 3 ingested records on the first run, got %d", first.Ingested)
		}
		if second.Ingested != 0 {
			t.Errorf("a repeated run must not report existing records as ingested, got %d", second.Ingested)
		}

		artists, err := repos.artists.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if len(artists) != 1 {
			t.Errorf("expected 1 artist after repeated ingestion, got %d", len(artists))
		}

		songs, err := repos.songs.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 1 {
			t.Errorf("expected 1 song after repeated ingestion, got %d", len(songs))
		}

		song := songs[0]
		tags, err := repos.songs.Tags(song.ID())
		if err != nil {
			t.Fatalf("failed to load song tags: %v", err)
		}
		if len(tags) != 2 {
			t.Errorf("expected 2 tags after repeated ingestion, got %d", len(tags))
		}

		sources, err := repos.sources.ListBySong(song.ID())
		if err != nil {
			t.Fatalf("failed to load song sources: %v", err)
		}
		if len(sources) != 2 {
			t.Errorf("expected 2 sources after repeated ingestion, got %d", len(sources))
		}
	})

	t.Run("AdoptsExternalIDOfKnownSong", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repos := newTestRepos(db)

		// Song already known locally, without a remote key.
		artist := models.NewPersistedArtist(0, models.Artist{Name: "Lorem Guitars", ExternalID: 501})
		if err := repos.artists.Create(artist); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		local := models.NewPersistedSong(0, artist.ID(), "", "", models.Song{Name: "Dusty Roads Pt. 1", Duration: 214})
		if err := repos.songs.Create(local); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		ing := newTestIngestor(catalog, repos)
		stats, err := ing.IngestSongs(context.Background())
		if err != nil {
			t.Fatalf("ingestion failed: %v", err)
		}
		if stats.Ingested != 1 {
			t.Errorf("adopting a known song counts as ingested once, got %d", stats.Ingested)
		}

		songs, err := repos.songs.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 1 {
			t.Fatalf("expected the known song to be adopted, got %d rows", len(songs))
		}
		if songs[0].ID() != local.ID() {
			t.Error("expected the existing row to survive")
		}
		if songs[0].ExternalID() != 77001 {
			t.Errorf("expected adopted external id 77001, got %d", songs[0].ExternalID())
		}
		if songs[0].Cover() == "" {
			t.Error("expected empty cover to be filled from the record")
		}
	})

	t.Run("SkipsMalformedRecords", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		broken := &fakeCatalog{records: map[string][]string{
			"artists": {`{"id": "abc", "name": "Bad Key"}`, artistRecordJSON},
		}}

		repos := newTestRepos(db)
		ing := newTestIngestor(broken, repos)

		stats, err := ing.IngestArtists(context.Background())
		if err != nil {
			t.Fatalf("ingestion failed: %v", err)
		}
		if stats.Skipped != 1 {
			t.Errorf("expected 1 skipped record, got %d", stats.Skipped)
		}
		if stats.Ingested != 1 {
			t.Errorf("expected 1 ingested record, got %d", stats.Ingested)
		}
	})
}
