// Package tasks orchestrates catalog synchronization against remote music services with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines the synchronization entry point:
//
//	[SyncEngine.Run] : Full remote catalog harvest
//	  - Records the attempt as a sync run (Planned → Running → Finished/Failed)
//	  - Paginates artists, albums and songs to exhaustion
//	  - Reconciles every fetched record against the local catalog
//	  - Returns the finished run row; the failure message of a crashed
//	    harvest is preserved on it
//
// # Record Handling
//
// The [Ingestor] parses raw catalog records and applies per-entity merge
// policies. Individual malformed records are skipped and logged; remote call
// failures abort the run so a partial listing is never mistaken for the full
// catalog.
//
// # Progress Updates
//
// Operations emit [ProgressUpdate] events via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks
