package tui

import (
	"fmt"
	"log"

	"studyforest/internal/core/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the terminal shell until the user quits or events closes.
// Log output goes to logPath while the screen is taken.
func Run(controller Controller, events <-chan session.Event, logPath string) error {
	if logPath != "" {
		file, err := tea.LogToFile(logPath, "studyforest")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()
	}

	program := tea.NewProgram(NewModel(controller, events), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	log.Printf("terminal ui closed")
	return nil
}
