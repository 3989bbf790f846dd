// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Saltline Works

package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saltline/poolbridge/internal/bridge"
	"github.com/saltline/poolbridge/internal/mailbox"
	"github.com/saltline/poolbridge/internal/model"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive TUI showing live controller state",
	Long: `Watch the controller's state in an interactive terminal UI: the panel
display text and the decoded parameter states, updated live from the bus.

Press q to exit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	watchDisplayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1)

	watchStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

type watchStateMsg struct {
	display   string
	params    map[string]string
	version   int
	updatedAt time.Time
}

type watchTUI struct {
	table     table.Model
	display   string
	version   int
	updatedAt time.Time
	connInfo  string
}

func (m watchTUI) Init() tea.Cmd {
	return nil
}

func (m watchTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case watchStateMsg:
		m.display = msg.display
		m.version = msg.version
		m.updatedAt = msg.updatedAt

		names := make([]string, 0, len(msg.params))
		for name := range msg.params {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([]table.Row, 0, len(names))
		for _, name := range names {
			rows = append(rows, table.Row{name, msg.params[name]})
		}
		m.table.SetRows(rows)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m watchTUI) View() string {
	title := watchTitleStyle.Render("Poolbridge - " + m.connInfo)

	display := m.display
	if display == "" {
		display = "(waiting for display frames)"
	}

	status := fmt.Sprintf("version %d", m.version)
	if !m.updatedAt.IsZero() {
		status += fmt.Sprintf(" · updated %s ago", time.Since(m.updatedAt).Round(time.Second))
	}
	status += " · q to quit"

	return title + "\n" +
		watchDisplayStyle.Render(display) + "\n" +
		m.table.View() + "\n" +
		watchStatusStyle.Render(status) + "\n"
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireSerialPort(cfg); err != nil {
		return err
	}

	bus, err := bridge.OpenSerialBus(cfg.SerialPort, cfg.BaudRate)
	if err != nil {
		return err
	}
	defer bus.Close()

	poolModel := model.New()
	box := mailbox.New()
	// Logging would corrupt the TUI; the bridge runs silent here.
	br := bridge.New(bus, poolModel, box, noopNotifier{}, cfg.CommandAttempts, zerolog.Nop())

	columns := []table.Column{
		{Title: "Parameter", Width: 18},
		{Title: "State", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(18),
	)

	m := watchTUI{
		table:    t,
		connInfo: fmt.Sprintf("%s @ %d baud", cfg.SerialPort, cfg.BaudRate),
	}
	p := tea.NewProgram(m, tea.WithAltScreen())

	done := make(chan struct{})
	go cycleUntil(br, done, 200*time.Millisecond, func() {
		p.Send(watchStateMsg{
			display:   poolModel.Display(),
			params:    poolModel.Parameters(),
			version:   poolModel.Version(),
			updatedAt: poolModel.LastUpdate(),
		})
	})

	_, err = p.Run()
	close(done)
	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

// cycleUntil drives bridge cycles until done is closed, invoking onTick at
// the given interval between cycles.
func cycleUntil(br *bridge.Bridge, done <-chan struct{}, interval time.Duration, onTick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			onTick()
		default:
		}
		if br.Cycle() {
			time.Sleep(time.Millisecond)
		}
	}
}
