package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/outofbits/ccatalog/internal/shared"
	"github.com/outofbits/ccatalog/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing and synchronizing the catalog.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/ccatalog-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.newSyncEngine(db)
	if err != nil {
		return err
	}

	s := newStore(db)
	model := ui.NewModel(ctx, ui.Store{
		Artists:  s.artists,
		Albums:   s.albums,
		Songs:    s.songs,
		Tags:     s.tags,
		Sources:  s.sources,
		Licenses: s.licenses,
	}, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
