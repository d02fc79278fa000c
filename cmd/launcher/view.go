package main

import (
	"context"
	"fmt"
	"strings"

	teaprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/modsmith/launcher/progress"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// updateMsg carries one ordered status emission from the run worker.
type updateMsg progress.Update

// doneMsg signals that the update stream ended.
type doneMsg struct{}

// runView renders the live run: a progress bar plus the latest status line.
// cancel is invoked when the user quits mid-run so the worker stops at its
// next checkpoint.
func runView(updates <-chan progress.Update, cancel context.CancelFunc) error {
	model := viewModel{
		updates: updates,
		bar:     teaprogress.New(teaprogress.WithDefaultGradient()),
		cancel:  cancel,
	}
	_, err := tea.NewProgram(model).Run()
	return err
}

type viewModel struct {
	updates <-chan progress.Update
	bar     teaprogress.Model
	cancel  context.CancelFunc

	percent float64
	status  string
	isError bool
	done    bool
}

// waitForUpdate blocks on the ordered update channel.
func (m viewModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

// Init implements tea.Model.
func (m viewModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update implements tea.Model.
func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
	case updateMsg:
		m.status = msg.Message
		m.isError = msg.Err
		if msg.Percent != nil {
			m.percent = *msg.Percent
		}
		return m, m.waitForUpdate()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m viewModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(m.bar.ViewAs(m.percent / 100))
	b.WriteString(fmt.Sprintf(" %5.1f%%\n\n  ", m.percent))
	switch {
	case m.isError:
		b.WriteString(errorStyle.Render(m.status))
	case m.done && m.percent >= 100:
		b.WriteString(doneStyle.Render(m.status))
	default:
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}
