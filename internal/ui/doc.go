// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and synchronizing the local catalog:
//  1. [BrowseView] : Browse songs, artists and albums of the local catalog (tab switches the entity)
//  2. [DetailView] : Inspect a song with its resolved artist, album, license, tags and audio sources
//  3. [ConfirmSyncView] : Confirm a Jamendo synchronization run
//  4. [SyncView] : Monitor real-time progress updates while the remote catalog is harvested
//  5. [ResultView] : Display the recorded run, including the failure message of a failed run
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the sync engine, providing non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
