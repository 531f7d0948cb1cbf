// Package models defines domain entities and persistence interfaces for the catalog service.
//
// The package contains two categories of types:
//
// 1. Parsed records: lightweight structs produced by the record parser from
// remote catalog JSON
//   - [Artist], [Album], [Song] : metadata records keyed by remote external ids
//   - [Source] : one playable or downloadable rendition of a song
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [PersistedArtist], [PersistedAlbum], [PersistedSong] : catalog rows with
//     optional external ids used as natural keys during reconciliation
//   - [Tag] : globally unique labels, created lazily, shared across songs
//   - [PersistedSource] : song-owned renditions, deduplicated by (kind, codec, link)
//   - [License] : Creative-Commons variants, lookup-or-create rows
//   - [SyncRun] : synchronization attempts with lifecycle status and failure message
//
// All persistent entities implement the [Model] interface providing ID generation,
// timestamps and validation. The [Repository] interface defines standard CRUD
// operations for database access.
package models
