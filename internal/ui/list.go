package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

var (
	_ list.Item = songItem{}
	_ list.Item = artistItem{}
	_ list.Item = albumItem{}
)

// songItem wraps [models.PersistedSong] to implement [list.Item]. The artist
// name is resolved at fetch time so the list renders without extra queries.
type songItem struct {
	song   *models.PersistedSong
	artist string
}

func (i songItem) FilterValue() string { return i.song.Name() }
func (i songItem) Title() string       { return i.song.Name() }
func (i songItem) Description() string {
	desc := shared.FormatDuration(i.song.Duration())
	if i.artist != "" {
		desc = fmt.Sprintf("%s • %s", i.artist, desc)
	}
	return desc
}

// artistItem wraps [models.PersistedArtist] to implement [list.Item].
type artistItem struct {
	artist *models.PersistedArtist
}

func (i artistItem) FilterValue() string { return i.artist.Name() }
func (i artistItem) Title() string       { return i.artist.Name() }
func (i artistItem) Description() string {
	if i.artist.Website() != "" {
		return i.artist.Website()
	}
	if i.artist.HasExternalID() {
		return fmt.Sprintf("catalog record %d", i.artist.ExternalID())
	}
	return "local artist"
}

// albumItem wraps [models.PersistedAlbum] to implement [list.Item]. The artist
// name is resolved at fetch time.
type albumItem struct {
	album  *models.PersistedAlbum
	artist string
}

func (i albumItem) FilterValue() string { return i.album.Name() }
func (i albumItem) Title() string       { return i.album.Name() }
func (i albumItem) Description() string {
	desc := i.artist
	if !i.album.ReleaseDate().IsZero() {
		year := fmt.Sprintf("%d", i.album.ReleaseDate().Year())
		if desc == "" {
			desc = year
		} else {
			desc = fmt.Sprintf("%s • %s", desc, year)
		}
	}
	if desc == "" {
		desc = "unknown artist"
	}
	return desc
}
