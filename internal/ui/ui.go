package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/repositories"
	"github.com/outofbits/ccatalog/internal/shared"
	"github.com/outofbits/ccatalog/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	DetailView
	ConfirmSyncView
	SyncView
	ResultView
)

// browseKind selects which catalog entity the browse list shows.
type browseKind int

const (
	browseSongs browseKind = iota
	browseArtists
	browseAlbums
)

func (k browseKind) title() string {
	switch k {
	case browseArtists:
		return "Artists"
	case browseAlbums:
		return "Albums"
	default:
		return "Songs"
	}
}

func (k browseKind) next() browseKind {
	switch k {
	case browseSongs:
		return browseArtists
	case browseArtists:
		return browseAlbums
	default:
		return browseSongs
	}
}

// Store bundles the repositories the browser reads from.
type Store struct {
	Artists  *repositories.ArtistRepository
	Albums   *repositories.AlbumRepository
	Songs    *repositories.SongRepository
	Tags     *repositories.TagRepository
	Sources  *repositories.SourceRepository
	Licenses *repositories.LicenseRepository
}

// songDetail is a fully resolved song: references replaced by display values.
type songDetail struct {
	song    *models.PersistedSong
	artist  string
	album   string
	license string
	tags    []string
	sources []*models.PersistedSource
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	store        Store
	engine       tasks.SyncEngine
	width        int
	height       int
	kind         browseKind
	browseList   list.Model
	listReady    bool
	detail       *songDetail
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	run          *models.SyncRun
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, store Store, engine tasks.SyncEngine) *Model {
	return &Model{
		ctx:    ctx,
		view:   BrowseView,
		store:  store,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the songs of the local catalog.
func (m *Model) Init() tea.Cmd {
	return m.fetchCatalog(browseSongs)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.browseList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmSyncView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCatalogFetched:
		payload := msg.data.(catalogPayload)
		if payload.err != nil {
			m.err = payload.err
			return m, tea.Quit
		}
		m.kind = payload.kind
		m.browseList = list.New(payload.items, list.NewDefaultDelegate(), 0, 0)
		m.browseList.Title = payload.kind.title()
		m.browseList.SetSize(m.width-4, m.height-8)
		m.listReady = true
		m.view = BrowseView
		return m, nil

	case MsgDetailFetched:
		payload := msg.data.(detailPayload)
		if payload.err != nil {
			m.err = payload.err
			m.view = BrowseView
			return m, nil
		}
		m.detail = payload.detail
		m.view = DetailView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		payload := msg.data.(syncPayload)
		m.run = payload.run
		m.err = payload.err
		m.view = ResultView
		if m.progressChan != nil {
			m.progressChan = nil
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case BrowseView:
		return m.renderBrowse()
	case DetailView:
		return m.renderDetail()
	case ConfirmSyncView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.fetchCatalog(m.kind.next())
	case "s":
		m.view = ConfirmSyncView
		return m, nil
	case "enter":
		if m.kind != browseSongs {
			return m, nil
		}
		selected := m.browseList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(songItem); ok {
				return m, m.fetchDetail(item)
			}
		}
	}

	return m.updateList(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.detail = nil
		m.view = BrowseView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = BrowseView
		return m, nil
	case "y":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.run = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, m.fetchCatalog(browseSongs)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != BrowseView || !m.listReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.browseList, cmd = m.browseList.Update(msg)
	return m, cmd
}

func (m *Model) fetchCatalog(kind browseKind) tea.Cmd {
	return func() tea.Msg {
		items, err := m.loadCatalog(kind)
		return catalogFetchedMsg(kind, items, err)
	}
}

func (m *Model) loadCatalog(kind browseKind) ([]list.Item, error) {
	switch kind {
	case browseArtists:
		artists, err := m.store.Artists.List(nil)
		if err != nil {
			return nil, err
		}
		items := make([]list.Item, len(artists))
		for i, artist := range artists {
			items[i] = artistItem{artist: artist}
		}
		return items, nil

	case browseAlbums:
		albums, err := m.store.Albums.List(nil)
		if err != nil {
			return nil, err
		}
		names, err := m.artistNames()
		if err != nil {
			return nil, err
		}
		items := make([]list.Item, len(albums))
		for i, album := range albums {
			items[i] = albumItem{album: album, artist: names[album.ArtistID()]}
		}
		return items, nil

	default:
		songs, err := m.store.Songs.List(nil)
		if err != nil {
			return nil, err
		}
		names, err := m.artistNames()
		if err != nil {
			return nil, err
		}
		items := make([]list.Item, len(songs))
		for i, song := range songs {
			items[i] = songItem{song: song, artist: names[song.ArtistID()]}
		}
		return items, nil
	}
}

func (m *Model) artistNames() (map[string]string, error) {
	artists, err := m.store.Artists.List(nil)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(artists))
	for _, artist := range artists {
		names[artist.ID()] = artist.Name()
	}
	return names, nil
}

func (m *Model) fetchDetail(item songItem) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.loadDetail(item)
		return detailFetchedMsg(detail, err)
	}
}

func (m *Model) loadDetail(item songItem) (*songDetail, error) {
	song := item.song
	detail := &songDetail{song: song, artist: item.artist}

	if song.AlbumID() != "" {
		album, err := m.store.Albums.Get(song.AlbumID())
		if err != nil {
			return nil, err
		}
		detail.album = album.Name()
	}

	if song.LicenseID() != "" {
		license, err := m.store.Licenses.Get(song.LicenseID())
		if err != nil {
			return nil, err
		}
		detail.license = license.Type()
	}

	tags, err := m.store.Songs.Tags(song.ID())
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		detail.tags = append(detail.tags, tag.Name())
	}

	sources, err := m.store.Sources.ListBySong(song.ID())
	if err != nil {
		return nil, err
	}
	detail.sources = sources

	return detail, nil
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		run, err := m.engine.Run(m.ctx, m.progressChan)
		m.run = run
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg(m.run, m.err)
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg(m.run, m.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderBrowse() string {
	if !m.listReady {
		return styles.help.Render("Loading the catalog...")
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.cycle, m.keys.sync, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.browseList.View(), helpView)
}

func (m *Model) renderDetail() string {
	title := styles.title.Render(m.detail.song.Name())

	var b strings.Builder
	if m.detail.artist != "" {
		fmt.Fprintf(&b, "Artist: %s\n", m.detail.artist)
	}
	if m.detail.album != "" {
		fmt.Fprintf(&b, "Album: %s\n", m.detail.album)
	}
	fmt.Fprintf(&b, "Duration: %s\n", shared.FormatDuration(m.detail.song.Duration()))
	if m.detail.license != "" {
		fmt.Fprintf(&b, "License: %s\n", m.detail.license)
	}
	if len(m.detail.tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(m.detail.tags, ", "))
	}
	if m.detail.song.ShareLink() != "" {
		fmt.Fprintf(&b, "Share: %s\n", m.detail.song.ShareLink())
	}
	if len(m.detail.sources) > 0 {
		b.WriteString("\nSources:\n")
		for _, source := range m.detail.sources {
			fmt.Fprintf(&b, "  • %s [%s] %s\n", source.Kind(), source.Codec(), source.Link())
		}
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Start a Jamendo catalog synchronization?")
	info := "\nThe remote catalog is harvested page by page and merged\ninto the local database. This can take a while.\n"

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Synchronizing Catalog")

	var phase string
	switch m.progress.Phase {
	case tasks.PlanRun:
		phase = "Planning the synchronization run..."
	case tasks.FetchArtists:
		phase = fmt.Sprintf("Harvesting artists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FetchAlbums:
		phase = fmt.Sprintf("Harvesting albums (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FetchSongs:
		phase = fmt.Sprintf("Harvesting songs (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FinishRun:
		phase = "Finishing the run..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Synchronization failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.run == nil {
		return styles.err.Render("No run available\n\nPress r to go back, q to quit")
	}

	var title string
	var info string
	if m.run.Status() == models.RunFailed {
		title = styles.err.Render("✗ Synchronization Failed")
		info = fmt.Sprintf("\nService: %s\nStatus: %s\n\n%s", m.run.Service(), m.run.Status(),
			styles.warn.Render(m.run.Exception()))
	} else {
		title = styles.ok.Render("✓ Synchronization Complete!")
		info = fmt.Sprintf("\nService: %s\nStatus: %s\n%s", m.run.Service(), m.run.Status(), m.progress.Message)
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
