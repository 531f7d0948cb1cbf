// Package web implements an HTMX-based web application mirroring the TUI functionality.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app replicates the five-view TUI workflow using server-side rendering
// with HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. Song List: Server-rendered table with hx-get for song details
//  2. Song Detail: HTMX partial swap showing artist, album, license, tags and sources
//  3. Sync Confirm: Modal confirmation with hx-post trigger
//  4. Progress Monitor: SSE (Server-Sent Events) streaming progress updates
//  5. Run Display: Final run status with ingested/skipped breakdown
//
// Core Components
//
//   - HTTP Server: reuses the server package's router and JSON handlers
//   - Engine Integration: Uses same tasks.SyncEngine and search.Engine as the TUI
//   - SSE Handler: Streams real-time progress during synchronization runs
//
// Routes
//
//	GET  /                    → Song list view
//	GET  /songs/{id}          → HTMX partial: song detail
//	GET  /search              → HTMX partial: cached search results
//	POST /sync                → Start sync run, return SSE endpoint
//	GET  /sync/{id}/stream    → SSE progress stream
//	GET  /sync/{id}/result    → Final run view
//
// Templates
//
//   - base.html: Layout with navigation
//   - songs.html: Table with hx-get on rows
//   - detail.html: Partial template for song detail
//   - progress.html: SSE consumer with progress bar
//   - run.html: Run status breakdown
//
// # State Management
//
// Unlike the TUI's in-memory state, the web app persists state in:
//   - SyncRun records: Track run progress across requests
//   - In-memory channels: SSE connections for active runs
//
// # Progress Streaming
//
// Run progress uses Server-Sent Events:
//  1. POST /sync creates a SyncRun, returns the run ID
//  2. Client opens SSE connection to /sync/{id}/stream
//  3. Handler launches goroutine running SyncEngine.Run
//  4. Progress channel updates stream as SSE events
//  5. On completion, send "done" event with redirect URL
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server and SSE
//
// Implementation Tasks
//
//  1. HTTP server setup with route registration
//  2. Template structure with HTMX integration
//  3. Song list handler backed by the repositories
//  4. Song detail handler (HTMX partial)
//  5. Sync endpoint creating a SyncRun
//  6. SSE handler streaming progress updates
//  7. Run handler displaying the recorded SyncRun
//  8. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - MockCatalog for remote catalog data
//   - Stub tasks.SyncEngine for runs
//   - Validate HTMX headers and response structure
//   - Test SSE stream formatting
package web
