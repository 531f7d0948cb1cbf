package models

import "time"

// Source kinds, as reported by the remote catalog.
const (
	SourceStream   = "stream"
	SourceDownload = "download"
)

// Source codecs inferred from the audio links.
const (
	CodecMP3     = "mp3"
	CodecOGG     = "ogg"
	CodecFLAC    = "flac"
	CodecUnknown = "unknown"
)

// Creative-Commons license variants. Suffixes are appended in NC, ND, SA
// order, matching the flag layout of the remote catalog.
const (
	LicenseCCBY     = "CC-BY"
	LicenseCCBYSA   = "CC-BY-SA"
	LicenseCCBYND   = "CC-BY-ND"
	LicenseCCBYNC   = "CC-BY-NC"
	LicenseCCBYNCSA = "CC-BY-NC-SA"
	LicenseCCBYNCND = "CC-BY-NC-ND"
	LicenseUnknown  = "UNKNOWN"
)

// Artist represents a parsed artist record from the remote catalog.
//
// An ExternalID of 0 means the record carries no remote natural key.
type Artist struct {
	Name       string
	ExternalID int64
	Website    string
	Image      string
	ShareLink  string
}

// Album represents a parsed album record from the remote catalog.
// The owning artist is referenced by its remote natural key; resolution to a
// local artist row happens during reconciliation.
type Album struct {
	Name             string
	ExternalID       int64
	ArtistExternalID int64
	ArtistName       string
	Cover            string
	ShareLink        string
	ReleaseDate      time.Time
}

// Source represents one playable or downloadable rendition of a song.
type Source struct {
	Kind  string // stream or download
	Codec string // mp3, ogg, flac or unknown
	Link  string
}

// Song represents a parsed song record from the remote catalog, including its
// derived license, tags and sources.
type Song struct {
	Name             string
	ExternalID       int64
	ArtistExternalID int64
	ArtistName       string
	AlbumExternalID  int64
	AlbumName        string
	Duration         int // seconds
	Cover            string
	ShareLink        string
	ReleaseDate      time.Time
	License          string
	Tags             []string
	Sources          []Source
}
