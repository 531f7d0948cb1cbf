// Package search serves catalog searches over songs, albums and artists with a
// temporary response cache and tag extraction from the search phrase.
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/repositories"
	"github.com/outofbits/ccatalog/internal/shared"
)

// Kind selects the entity type a search targets.
type Kind string

const (
	KindSongs   Kind = "songs"
	KindAlbums  Kind = "albums"
	KindArtists Kind = "artists"
)

// Valid reports whether the kind is one of the supported search targets.
func (k Kind) Valid() bool {
	switch k {
	case KindSongs, KindAlbums, KindArtists:
		return true
	}
	return false
}

// Request is one search request. Two requests are considered equal when their
// phrase and kind match; the timestamp only drives cache expiry.
type Request struct {
	Phrase    string
	Kind      Kind
	Timestamp time.Time
}

// NewRequest creates a Request stamped with the current time.
func NewRequest(phrase string, kind Kind) Request {
	return Request{Phrase: phrase, Kind: kind, Timestamp: time.Now()}
}

// Response holds the result of a search. Only the slice matching the request
// kind is populated. ExtractedTags lists the phrase tokens that matched known
// tag names.
type Response struct {
	Artists       []*models.PersistedArtist
	Albums        []*models.PersistedAlbum
	Songs         []*models.PersistedSong
	ExtractedTags []string
}

// Len returns the number of result records.
func (r *Response) Len() int {
	return len(r.Artists) + len(r.Albums) + len(r.Songs)
}

// Engine answers search requests from the persisted catalog, consulting the
// cache first.
type Engine struct {
	artists    *repositories.ArtistRepository
	albums     *repositories.AlbumRepository
	songs      *repositories.SongRepository
	tags       *repositories.TagRepository
	cache      *Cache
	maxResults int
	logger     *log.Logger
}

// NewEngine creates an Engine over the given repositories. maxResults caps the
// size of any computed result set; non-positive values fall back to 500.
func NewEngine(
	artists *repositories.ArtistRepository,
	albums *repositories.AlbumRepository,
	songs *repositories.SongRepository,
	tags *repositories.TagRepository,
	cache *Cache,
	maxResults int,
	logger *log.Logger,
) *Engine {
	if maxResults <= 0 {
		maxResults = 500
	}
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		artists:    artists,
		albums:     albums,
		songs:      songs,
		tags:       tags,
		cache:      cache,
		maxResults: maxResults,
		logger:     shared.WithLogger(logger, "component", "search"),
	}
}

// Accept answers the search request. A cached response is returned when one is
// stored and still fresh; otherwise the catalog is queried and the response
// cached.
func (e *Engine) Accept(req Request) (*Response, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: search kind %q", shared.ErrInvalidArgument, req.Kind)
	}

	if cached, ok := e.cache.Get(req); ok {
		e.logger.Debug("cache hit", "phrase", req.Phrase, "kind", req.Kind)
		return cached, nil
	}

	extracted, err := e.extractTags(req.Phrase)
	if err != nil {
		return nil, err
	}

	response := &Response{ExtractedTags: extracted}
	switch req.Kind {
	case KindSongs:
		response.Songs, err = e.songs.Search(req.Phrase, extracted, e.maxResults)
	case KindAlbums:
		response.Albums, err = e.albums.Search(req.Phrase, e.maxResults)
	case KindArtists:
		response.Artists, err = e.artists.Search(req.Phrase, e.maxResults)
	}
	if err != nil {
		return nil, err
	}

	e.cache.Put(req, response)
	return response, nil
}

// extractTags returns the lowercased whitespace tokens of the phrase that are
// known tag names.
func (e *Engine) extractTags(phrase string) ([]string, error) {
	known, err := e.tags.Names()
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(known))
	for _, name := range known {
		names[name] = true
	}

	var extracted []string
	for _, token := range strings.Fields(strings.ToLower(phrase)) {
		if names[token] {
			extracted = append(extracted, token)
		}
	}
	return extracted, nil
}
