package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogFetched MsgKind = iota
	MsgDetailFetched
	MsgProgressUpdate
	MsgSyncComplete
)

// catalogPayload carries one fetched browse page, already wrapped as list
// items for the kind that requested it.
type catalogPayload struct {
	kind  browseKind
	items []list.Item
	err   error
}

type detailPayload struct {
	detail *songDetail
	err    error
}

type syncPayload struct {
	run *models.SyncRun
	err error
}

// catalogFetchedMsg is the constructor for [MsgCatalogFetched]
func catalogFetchedMsg(kind browseKind, items []list.Item, err error) Msg {
	return Msg{kind: MsgCatalogFetched, data: catalogPayload{kind: kind, items: items, err: err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(detail *songDetail, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailPayload{detail: detail, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(run *models.SyncRun, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: syncPayload{run: run, err: err}}
}
