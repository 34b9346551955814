package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mysubs/internal/shared"
	"github.com/desertthunder/mysubs/internal/ui"
)

// TUI launches the interactive subscription browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/mysubs-tui.log"
	}
	fileLogger := shared.NewFileLogger(logPath)
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.session(ctx); err != nil {
		return err
	}
	if !r.manager.IsAuthenticated(ctx) {
		return fmt.Errorf("%w: run 'mysubs auth login' first", shared.ErrNotAuthenticated)
	}

	model := ui.NewModel(ctx, r.youtube, r.manager)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if model.LoggedOut() {
		return r.writePlain("✓ Signed out\n")
	}
	return nil
}
