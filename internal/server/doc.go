// Package server provides HTTP routing, middleware, and the API handlers of the catalog web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # API Handlers
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
//   - [SyncHandler] : triggers catalog synchronization runs via the command
//     query parameter. A run that fails mid-harvest is still reported with
//     status 200; its failure lives on the run payload.
//   - [RunsHandler] : lists recorded sync runs, newest first.
//   - [SearchHandler] : serves cached catalog searches over songs, albums and
//     artists with offset/limit paging.
//
// All responses share a single JSON envelope with status, optional error
// message and result payload.
package server
