// package services defines interface Catalog for interacting with remote music catalog APIs
//
// Jamendo is the only implementation; the interface keeps the ingest pipeline
// testable and open for further catalog providers.
package services

import (
	"context"
	"encoding/json"
	"net/url"
)

// Catalog defines the interface for remote music catalog providers that expose
// paginated JSON listings of artists, albums and songs.
type Catalog interface {
	// Call performs a single request against the named catalog resource
	// (e.g. "artists", "albums", "tracks") with the given query parameters.
	// Returns the decoded response envelope or an error when the transport
	// fails, the envelope is corrupted, or the catalog reports a non-success
	// status.
	Call(ctx context.Context, resource string, params url.Values) (*Envelope, error)

	// Name returns the name of the catalog provider (e.g. "Jamendo")
	Name() string
}

// Headers is the status block every catalog response carries.
type Headers struct {
	Status       string `json:"status"`
	Code         int    `json:"code"`
	ErrorMessage string `json:"error_message"`
	ResultsCount int    `json:"results_count"`
}

// Envelope is a decoded catalog response: a status header block plus the raw
// result records. Records stay undecoded here; the ingest pipeline owns their
// interpretation and its per-record failure handling.
type Envelope struct {
	Headers Headers           `json:"headers"`
	Results []json.RawMessage `json:"results"`
}
