package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/repositories"
	"github.com/outofbits/ccatalog/internal/search"
	"github.com/outofbits/ccatalog/internal/shared"
	"github.com/outofbits/ccatalog/internal/tasks"
)

// Synchronization commands accepted by the sync endpoint.
const CommandStartJamendoSync = "start-jamendo-crawl"

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// responseObject is the JSON envelope shared by all API endpoints.
type responseObject struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Result       any    `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body responseObject) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeResult(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, responseObject{Status: "success", Result: result})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, responseObject{Status: "fail", ErrorMessage: message})
}

// runPayload is the JSON shape of a sync run.
type runPayload struct {
	ID        string    `json:"id"`
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Exception string    `json:"exception,omitempty"`
}

func newRunPayload(run *models.SyncRun) runPayload {
	return runPayload{
		ID:        run.ID(),
		Service:   run.Service(),
		Status:    run.Status(),
		StartedAt: run.StartedAt(),
		Exception: run.Exception(),
	}
}

// SyncHandler triggers catalog synchronization runs.
// Implements the Handler interface for registration with a Router.
type SyncHandler struct {
	engine tasks.SyncEngine
	logger *log.Logger
}

// NewSyncHandler creates a SyncHandler over the given engine.
func NewSyncHandler(engine tasks.SyncEngine, logger *log.Logger) *SyncHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncHandler{engine: engine, logger: shared.WithLogger(logger, "handler", "sync")}
}

// Routes returns the HTTP routes this handler serves.
func (h *SyncHandler) Routes() []string {
	return []string{"/api/sync"}
}

// ServeHTTP dispatches the requested synchronization command.
//
// A run that ends Failed is still a successful trigger: the response carries
// the run with its failure message and status 200. Only a run that cannot be
// recorded at all yields status 500.
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	command := r.URL.Query().Get("command")
	if command == "" {
		writeFail(w, http.StatusBadRequest, "No command is given!")
		return
	}
	if command != CommandStartJamendoSync {
		writeFail(w, http.StatusBadRequest, "The given command is unknown!")
		return
	}

	run, err := h.engine.Run(r.Context(), nil)
	if err != nil {
		h.logger.Error("failed to trigger synchronization", "error", err)
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeResult(w, newRunPayload(run))
}

// RunsHandler lists recorded sync runs.
// Implements the Handler interface for registration with a Router.
type RunsHandler struct {
	runs   *repositories.SyncRunRepository
	logger *log.Logger
}

// NewRunsHandler creates a RunsHandler over the given repository.
func NewRunsHandler(runs *repositories.SyncRunRepository, logger *log.Logger) *RunsHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RunsHandler{runs: runs, logger: shared.WithLogger(logger, "handler", "runs")}
}

// Routes returns the HTTP routes this handler serves.
func (h *RunsHandler) Routes() []string {
	return []string{"/api/sync/runs"}
}

// ServeHTTP lists sync runs, newest first, optionally filtered by the service
// query parameter.
func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.List(r.URL.Query().Get("service"))
	if err != nil {
		h.logger.Error("failed to list sync runs", "error", err)
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := make([]runPayload, 0, len(runs))
	for _, run := range runs {
		payload = append(payload, newRunPayload(run))
	}

	writeResult(w, payload)
}

// artistPayload is the JSON shape of a catalog artist.
type artistPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ExternalID int64  `json:"external_id,omitempty"`
	Website    string `json:"website,omitempty"`
	Image      string `json:"image,omitempty"`
	ShareLink  string `json:"share_link,omitempty"`
}

// albumPayload is the JSON shape of a catalog album.
type albumPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArtistID    string `json:"artist_id,omitempty"`
	ExternalID  int64  `json:"external_id,omitempty"`
	Cover       string `json:"cover,omitempty"`
	ShareLink   string `json:"share_link,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// songPayload is the JSON shape of a catalog song.
type songPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArtistID    string `json:"artist_id,omitempty"`
	AlbumID     string `json:"album_id,omitempty"`
	ExternalID  int64  `json:"external_id,omitempty"`
	Duration    int    `json:"duration"`
	Cover       string `json:"cover,omitempty"`
	ShareLink   string `json:"share_link,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// searchPayload is the JSON shape of a search result page.
type searchPayload struct {
	Total         int             `json:"total"`
	Offset        int             `json:"offset"`
	Limit         int             `json:"limit"`
	ExtractedTags []string        `json:"extracted_tags"`
	Artists       []artistPayload `json:"artists,omitempty"`
	Albums        []albumPayload  `json:"albums,omitempty"`
	Songs         []songPayload   `json:"songs,omitempty"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// SearchHandler serves catalog searches.
// Implements the Handler interface for registration with a Router.
type SearchHandler struct {
	engine *search.Engine
	logger *log.Logger
}

// NewSearchHandler creates a SearchHandler over the given search engine.
func NewSearchHandler(engine *search.Engine, logger *log.Logger) *SearchHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SearchHandler{engine: engine, logger: shared.WithLogger(logger, "handler", "search")}
}

// Routes returns the HTTP routes this handler serves.
func (h *SearchHandler) Routes() []string {
	return []string{"/api/search"}
}

// ServeHTTP answers a search request. The engine caches the full capped result
// set per phrase and kind; paging with offset and limit happens here.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind := search.Kind(query.Get("kind"))
	if kind == "" {
		kind = search.KindSongs
	}
	if !kind.Valid() {
		writeFail(w, http.StatusBadRequest, "The given search kind is unknown!")
		return
	}

	offset := parseBound(query.Get("offset"), 0, 0, 1<<30)
	limit := parseBound(query.Get("limit"), defaultSearchLimit, 1, maxSearchLimit)

	response, err := h.engine.Accept(search.NewRequest(query.Get("phrase"), kind))
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := searchPayload{
		Total:         response.Len(),
		Offset:        offset,
		Limit:         limit,
		ExtractedTags: response.ExtractedTags,
	}

	switch kind {
	case search.KindArtists:
		for _, artist := range slicePage(response.Artists, offset, limit) {
			payload.Artists = append(payload.Artists, artistPayload{
				ID:         artist.ID(),
				Name:       artist.Name(),
				ExternalID: artist.ExternalID(),
				Website:    artist.Website(),
				Image:      artist.Image(),
				ShareLink:  artist.ShareLink(),
			})
		}
	case search.KindAlbums:
		for _, album := range slicePage(response.Albums, offset, limit) {
			payload.Albums = append(payload.Albums, albumPayload{
				ID:          album.ID(),
				Name:        album.Name(),
				ArtistID:    album.ArtistID(),
				ExternalID:  album.ExternalID(),
				Cover:       album.Cover(),
				ShareLink:   album.ShareLink(),
				ReleaseDate: formatDate(album.ReleaseDate()),
			})
		}
	case search.KindSongs:
		for _, song := range slicePage(response.Songs, offset, limit) {
			payload.Songs = append(payload.Songs, songPayload{
				ID:          song.ID(),
				Name:        song.Name(),
				ArtistID:    song.ArtistID(),
				AlbumID:     song.AlbumID(),
				ExternalID:  song.ExternalID(),
				Duration:    song.Duration(),
				Cover:       song.Cover(),
				ShareLink:   song.ShareLink(),
				ReleaseDate: formatDate(song.ReleaseDate()),
			})
		}
	}

	writeResult(w, payload)
}

// parseBound parses a numeric query parameter, clamping it to [min, max].
func parseBound(raw string, fallback, min, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// slicePage returns the page [offset, offset+limit) of the given slice.
func slicePage[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
