package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/repositories"
	"github.com/outofbits/ccatalog/internal/services"
	"github.com/outofbits/ccatalog/internal/shared"
)

// releaseDateLayout is the date format used by the remote catalog.
const releaseDateLayout = "2006-01-02"

// songInclude requests the optional record blocks needed for tag and license
// derivation.
const songInclude = "musicinfo stats licenses"

// artistRecord mirrors the raw artist record shape of the remote catalog.
type artistRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Website  string `json:"website"`
	Image    string `json:"image"`
	ShareURL string `json:"shareurl"`
}

// albumRecord mirrors the raw album record shape of the remote catalog.
type albumRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArtistID    string `json:"artist_id"`
	ArtistName  string `json:"artist_name"`
	Image       string `json:"image"`
	ShareURL    string `json:"shareurl"`
	ReleaseDate string `json:"releasedate"`
}

// songRecord mirrors the raw track record shape of the remote catalog. The
// musicinfo and licenses blocks are only present when requested via include.
type songRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArtistID      string `json:"artist_id"`
	ArtistName    string `json:"artist_name"`
	AlbumID       string `json:"album_id"`
	AlbumName     string `json:"album_name"`
	Duration      int    `json:"duration"`
	Image         string `json:"image"`
	ShareURL      string `json:"shareurl"`
	ReleaseDate   string `json:"releasedate"`
	Audio         string `json:"audio"`
	AudioDownload string `json:"audiodownload"`
	MusicInfo     *struct {
		Tags map[string][]string `json:"tags"`
	} `json:"musicinfo"`
	Licenses *struct {
		CCNC string `json:"ccnc"`
		CCND string `json:"ccnd"`
		CCSA string `json:"ccsa"`
	} `json:"licenses"`
}

// parseExternalID converts a record id field into a numeric natural key.
// The remote catalog serializes ids as strings.
func parseExternalID(raw, field string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", shared.ErrMalformedRecord, field)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not numeric", shared.ErrMalformedRecord, field, raw)
	}
	return id, nil
}

// parseOptionalID converts an id field that the record may legitimately omit.
func parseOptionalID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// parseReleaseDate converts a catalog date string; unparsable dates degrade to
// the zero time rather than failing the record.
func parseReleaseDate(raw string) time.Time {
	t, err := time.Parse(releaseDateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseArtist(record json.RawMessage) (models.Artist, error) {
	var raw artistRecord
	if err := json.Unmarshal(record, &raw); err != nil {
		return models.Artist{}, fmt.Errorf("%w: %v", shared.ErrMalformedRecord, err)
	}

	externalID, err := parseExternalID(raw.ID, "artist id")
	if err != nil {
		return models.Artist{}, err
	}
	if raw.Name == "" {
		return models.Artist{}, fmt.Errorf("%w: artist %d has no name", shared.ErrMalformedRecord, externalID)
	}

	return models.Artist{
		Name:       raw.Name,
		ExternalID: externalID,
		Website:    raw.Website,
		Image:      raw.Image,
		ShareLink:  raw.ShareURL,
	}, nil
}

func parseAlbum(record json.RawMessage) (models.Album, error) {
	var raw albumRecord
	if err := json.Unmarshal(record, &raw); err != nil {
		return models.Album{}, fmt.Errorf("%w: %v", shared.ErrMalformedRecord, err)
	}

	externalID, err := parseExternalID(raw.ID, "album id")
	if err != nil {
		return models.Album{}, err
	}
	if raw.Name == "" {
		return models.Album{}, fmt.Errorf("%w: album %d has no name", shared.ErrMalformedRecord, externalID)
	}

	return models.Album{
		Name:             raw.Name,
		ExternalID:       externalID,
		ArtistExternalID: parseOptionalID(raw.ArtistID),
		ArtistName:       raw.ArtistName,
		Cover:            raw.Image,
		ShareLink:        raw.ShareURL,
		ReleaseDate:      parseReleaseDate(raw.ReleaseDate),
	}, nil
}

func parseSong(record json.RawMessage) (models.Song, error) {
	var raw songRecord
	if err := json.Unmarshal(record, &raw); err != nil {
		return models.Song{}, fmt.Errorf("%w: %v", shared.ErrMalformedRecord, err)
	}

	externalID, err := parseExternalID(raw.ID, "song id")
	if err != nil {
		return models.Song{}, err
	}
	if raw.Name == "" {
		return models.Song{}, fmt.Errorf("%w: song %d has no name", shared.ErrMalformedRecord, externalID)
	}

	song := models.Song{
		Name:             raw.Name,
		ExternalID:       externalID,
		ArtistExternalID: parseOptionalID(raw.ArtistID),
		ArtistName:       raw.ArtistName,
		AlbumExternalID:  parseOptionalID(raw.AlbumID),
		AlbumName:        raw.AlbumName,
		Duration:         raw.Duration,
		Cover:            raw.Image,
		ShareLink:        raw.ShareURL,
		ReleaseDate:      parseReleaseDate(raw.ReleaseDate),
		License:          deriveLicense(raw),
		Tags:             collectTags(raw),
	}

	if raw.AudioDownload != "" {
		song.Sources = append(song.Sources, models.Source{
			Kind:  models.SourceDownload,
			Codec: downloadCodec(raw.AudioDownload),
			Link:  raw.AudioDownload,
		})
	}
	if raw.Audio != "" {
		song.Sources = append(song.Sources, models.Source{
			Kind:  models.SourceStream,
			Codec: streamCodec(raw.Audio),
			Link:  raw.Audio,
		})
	}

	return song, nil
}

// deriveLicense maps the license flag block to a Creative-Commons variant.
// The suffix order NC, ND, SA matches the remote catalog layout. A record
// without a license block gets the UNKNOWN variant.
func deriveLicense(raw songRecord) string {
	if raw.Licenses == nil {
		return models.LicenseUnknown
	}
	license := models.LicenseCCBY
	if raw.Licenses.CCNC == "true" {
		license += "-NC"
	}
	if raw.Licenses.CCND == "true" {
		license += "-ND"
	}
	if raw.Licenses.CCSA == "true" {
		license += "-SA"
	}
	return license
}

// collectTags flattens the per-category tag lists of the musicinfo block.
func collectTags(raw songRecord) []string {
	if raw.MusicInfo == nil || raw.MusicInfo.Tags == nil {
		return nil
	}
	var tags []string
	for _, entries := range raw.MusicInfo.Tags {
		tags = append(tags, entries...)
	}
	return tags
}

// streamCodec infers the codec of a streaming link from its format parameter.
func streamCodec(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return models.CodecUnknown
	}
	return codecFromHint(parsed.Query().Get("format"))
}

// downloadCodec infers the codec of a download link from its path.
func downloadCodec(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return models.CodecUnknown
	}
	return codecFromHint(parsed.Path)
}

func codecFromHint(hint string) string {
	switch {
	case strings.Contains(hint, models.CodecMP3):
		return models.CodecMP3
	case strings.Contains(hint, models.CodecOGG):
		return models.CodecOGG
	case strings.Contains(hint, models.CodecFLAC):
		return models.CodecFLAC
	default:
		return models.CodecUnknown
	}
}

// IngestStats counts the outcome of one ingestion pass. Skipped covers
// malformed records that were logged and dropped.
type IngestStats struct {
	Ingested int
	Skipped  int
}

func (s IngestStats) add(other IngestStats) IngestStats {
	return IngestStats{Ingested: s.Ingested + other.Ingested, Skipped: s.Skipped + other.Skipped}
}

// Ingestor reconciles fetched catalog records against the persisted catalog.
//
// Merge policies per entity: artists and albums found by external id keep
// their persisted state (existing wins); songs found by name without an
// external id adopt the remote natural key and fill empty fields. Tags and
// sources are deduplicated globally.
type Ingestor struct {
	catalog  services.Catalog
	artists  *repositories.ArtistRepository
	albums   *repositories.AlbumRepository
	songs    *repositories.SongRepository
	tags     *repositories.TagRepository
	sources  *repositories.SourceRepository
	licenses *repositories.LicenseRepository
	logger   *log.Logger
}

// NewIngestor creates an Ingestor over the given catalog client and repositories.
func NewIngestor(
	catalog services.Catalog,
	artists *repositories.ArtistRepository,
	albums *repositories.AlbumRepository,
	songs *repositories.SongRepository,
	tags *repositories.TagRepository,
	sources *repositories.SourceRepository,
	licenses *repositories.LicenseRepository,
	logger *log.Logger,
) *Ingestor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Ingestor{
		catalog:  catalog,
		artists:  artists,
		albums:   albums,
		songs:    songs,
		tags:     tags,
		sources:  sources,
		licenses: licenses,
		logger:   shared.WithLogger(logger, "component", "ingestor"),
	}
}

// rawRecords harvests every record of a catalog resource without decoding.
func (ing *Ingestor) rawRecords(ctx context.Context, resource string, params url.Values) ([]json.RawMessage, error) {
	return services.HarvestAll(ctx, ing.catalog, resource, params, func(record json.RawMessage) (json.RawMessage, error) {
		return record, nil
	})
}

// IngestArtists harvests all artists and reconciles them against the catalog.
func (ing *Ingestor) IngestArtists(ctx context.Context) (IngestStats, error) {
	var stats IngestStats

	records, err := ing.rawRecords(ctx, "artists", nil)
	if err != nil {
		return stats, err
	}

	for _, record := range records {
		dto, err := parseArtist(record)
		if err != nil {
			ing.logger.Warn("skipping artist record", "error", err)
			stats.Skipped++
			continue
		}

		_, err = ing.artists.GetByExternalID(dto.ExternalID)
		if err == nil {
			continue // existing wins
		}
		if !errors.Is(err, shared.ErrEntityNotFound) {
			return stats, err
		}

		if err := ing.artists.Create(models.NewPersistedArtist(0, dto)); err != nil {
			return stats, err
		}
		stats.Ingested++
	}

	ing.logger.Info("artists ingested", "count", stats.Ingested, "skipped", stats.Skipped)
	return stats, nil
}

// IngestAlbums harvests all albums and reconciles them against the catalog.
func (ing *Ingestor) IngestAlbums(ctx context.Context) (IngestStats, error) {
	var stats IngestStats

	records, err := ing.rawRecords(ctx, "albums", nil)
	if err != nil {
		return stats, err
	}

	for _, record := range records {
		dto, err := parseAlbum(record)
		if err != nil {
			ing.logger.Warn("skipping album record", "error", err)
			stats.Skipped++
			continue
		}

		_, err = ing.albums.GetByExternalID(dto.ExternalID)
		if err == nil {
			continue // existing wins
		}
		if !errors.Is(err, shared.ErrEntityNotFound) {
			return stats, err
		}

		artistID, err := ing.resolveArtist(ctx, dto.ArtistExternalID, dto.ArtistName)
		if err != nil {
			return stats, err
		}

		if err := ing.albums.Create(models.NewPersistedAlbum(0, artistID, dto)); err != nil {
			return stats, err
		}
		stats.Ingested++
	}

	ing.logger.Info("albums ingested", "count", stats.Ingested, "skipped", stats.Skipped)
	return stats, nil
}

// IngestSongs harvests all songs with their music info and license blocks and
// reconciles them against the catalog.
func (ing *Ingestor) IngestSongs(ctx context.Context) (IngestStats, error) {
	var stats IngestStats

	params := url.Values{}
	params.Set("include", songInclude)

	records, err := ing.rawRecords(ctx, "tracks", params)
	if err != nil {
		return stats, err
	}

	for _, record := range records {
		dto, err := parseSong(record)
		if err != nil {
			ing.logger.Warn("skipping song record", "error", err)
			stats.Skipped++
			continue
		}

		created, err := ing.reconcileSong(ctx, dto)
		if err != nil {
			return stats, err
		}
		if created {
			stats.Ingested++
		}
	}

	ing.logger.Info("songs ingested", "count", stats.Ingested, "skipped", stats.Skipped)
	return stats, nil
}

// reconcileSong persists one parsed song record, applying the fill-gaps merge
// policy and linking tags and sources. Reports whether the record produced a
// new local song or bound an existing one to its external id, so already
// known songs are not counted again on a repeated run.
func (ing *Ingestor) reconcileSong(ctx context.Context, dto models.Song) (bool, error) {
	artistID, err := ing.resolveArtist(ctx, dto.ArtistExternalID, dto.ArtistName)
	if err != nil {
		return false, err
	}

	albumID, err := ing.resolveAlbum(ctx, dto.AlbumExternalID, dto.AlbumName, artistID)
	if err != nil {
		return false, err
	}

	ingested := false

	song, err := ing.songs.GetByExternalID(dto.ExternalID)
	if err != nil && !errors.Is(err, shared.ErrEntityNotFound) {
		return false, err
	}

	if song == nil {
		// A locally known song without a remote key adopts the external id
		// and fills its empty fields from the record.
		song, err = ing.songs.GetUniqueByName(dto.Name, artistID)
		if err == nil && !song.HasExternalID() {
			song.AdoptExternal(dto.ExternalID, dto.Cover, dto.ShareLink)
			if err := ing.songs.Update(song); err != nil {
				return false, err
			}
			ingested = true
		} else if err != nil {
			if !errors.Is(err, shared.ErrEntityNotFound) && !errors.Is(err, shared.ErrReconciliation) {
				return false, err
			}
			song = nil
		}
	}

	if song == nil {
		license, err := ing.licenses.GetOrCreate(dto.License)
		if err != nil {
			return false, err
		}
		song = models.NewPersistedSong(0, artistID, albumID, license.ID(), dto)
		if err := ing.songs.Create(song); err != nil {
			return false, err
		}
		ingested = true
	}

	for _, name := range dto.Tags {
		tag, err := ing.tags.GetOrCreate(name)
		if err != nil {
			return false, err
		}
		if err := ing.songs.AddTag(song.ID(), tag.ID()); err != nil {
			return false, err
		}
	}

	for _, src := range dto.Sources {
		if src.Link == "" {
			continue
		}
		_, err := ing.sources.GetByIdentity(src.Kind, src.Codec, src.Link)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrEntityNotFound) {
			return false, err
		}
		if err := ing.sources.Create(models.NewPersistedSource(0, song.ID(), src)); err != nil {
			return false, err
		}
	}

	return ingested, nil
}

// resolveArtist resolves a record's artist reference to a local row id.
//
// Lookup order: external id, single-record remote fetch, unique name. An
// unresolvable reference is tolerated and yields an empty id; remote call and
// database failures propagate.
func (ing *Ingestor) resolveArtist(ctx context.Context, externalID int64, name string) (string, error) {
	if externalID != 0 {
		artist, err := ing.artists.GetByExternalID(externalID)
		if err == nil {
			return artist.ID(), nil
		}
		if !errors.Is(err, shared.ErrEntityNotFound) {
			return "", err
		}

		dto, err := ing.fetchRemoteArtist(ctx, externalID)
		if err == nil {
			created := models.NewPersistedArtist(0, dto)
			if err := ing.artists.Create(created); err != nil {
				return "", err
			}
			return created.ID(), nil
		}
		if !errors.Is(err, shared.ErrEntityNotFound) {
			return "", err
		}
	}

	if name != "" {
		artist, err := ing.artists.GetUniqueByName(name)
		if err == nil {
			return artist.ID(), nil
		}
		if !errors.Is(err, shared.ErrEntityNotFound) && !errors.Is(err, shared.ErrReconciliation) {
			return "", err
		}
	}

	ing.logger.Warn("artist reference cannot be resolved", "external_id", externalID, "name", name)
	return "", nil
}

// resolveAlbum resolves a record's album reference to a local row id,
// following the same tolerant lookup order as resolveArtist.
func (ing *Ingestor) resolveAlbum(ctx context.Context, externalID int64, name, artistID string) (string, error) {
	if externalID != 0 {
		album, err := ing.albums.GetByExternalID(externalID)
		if err == nil {
			return album.ID(), nil
		}
		if !errors.Is(err, shared.ErrEntityNotFound) {
			return "", err
		}

		dto, err := ing.fetchRemoteAlbum(ctx, externalID)
		if err == nil {
			ownerID, err := ing.resolveArtist(ctx, dto.ArtistExternalID, dto.ArtistName)
			if err != nil {
				return "", err
			}
			created := models.NewPersistedAlbum(0, ownerID, dto)
			if err := ing.albums.Create(created); err != nil {
				return "", err
			}
			return created.ID(), nil
		}
		if !errors.Is(err, shared.ErrEntityNotFound) {
			return "", err
		}
	}

	if name != "" && artistID != "" {
		album, err := ing.albums.GetUniqueByName(name, artistID)
		if err == nil {
			return album.ID(), nil
		}
		if !errors.Is(err, shared.ErrEntityNotFound) && !errors.Is(err, shared.ErrReconciliation) {
			return "", err
		}
	}

	ing.logger.Warn("album reference cannot be resolved", "external_id", externalID, "name", name)
	return "", nil
}

// fetchRemoteArtist fetches a single artist record by its remote natural key.
func (ing *Ingestor) fetchRemoteArtist(ctx context.Context, externalID int64) (models.Artist, error) {
	record, err := ing.fetchSingle(ctx, "artists", externalID)
	if err != nil {
		return models.Artist{}, err
	}
	return parseArtist(record)
}

// fetchRemoteAlbum fetches a single album record by its remote natural key.
func (ing *Ingestor) fetchRemoteAlbum(ctx context.Context, externalID int64) (models.Album, error) {
	record, err := ing.fetchSingle(ctx, "albums", externalID)
	if err != nil {
		return models.Album{}, err
	}
	return parseAlbum(record)
}

func (ing *Ingestor) fetchSingle(ctx context.Context, resource string, externalID int64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(externalID, 10))

	envelope, err := ing.catalog.Call(ctx, resource, params)
	if err != nil {
		return nil, err
	}
	if envelope.Headers.ResultsCount != 1 || len(envelope.Results) != 1 {
		return nil, fmt.Errorf("%w: %s %d on remote catalog", shared.ErrEntityNotFound, resource, externalID)
	}
	return envelope.Results[0], nil
}
