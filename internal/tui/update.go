package tui

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/attache-dl/attache/internal/catalog"
	"github.com/attache-dl/attache/internal/download"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transferEventMsg:
		return m.onTransferEvent(msg)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

// onTransferEvent applies a progress event and keeps the listen loop armed
// for whichever transfer is active afterwards.
func (m Model) onTransferEvent(msg transferEventMsg) (tea.Model, tea.Cmd) {
	active := m.ctrl.Active()
	if active == nil || active.ID != msg.id {
		// A cancelled or superseded transfer may still deliver one event.
		return m, nil
	}

	if msg.evt.Terminal() {
		att := m.catalog.At(active.Index)
		if msg.evt.Kind == download.KindError {
			slog.Error("download failed", "filename", att.Filename, "error", msg.evt.Err)
		} else {
			slog.Info("download finished", "filename", att.Filename)
		}
	}

	if next := m.ctrl.OnEvent(msg.evt); next != nil {
		return m, listenTransfer(next)
	}
	if t := m.ctrl.Active(); t != nil {
		return m, listenTransfer(t)
	}
	return m, nil
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.CancelActive()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.catalog.Len() == 0 {
			return m, nil
		}
		if m.cursor <= 0 {
			m.cursor = 0
		} else {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.catalog.Len() == 0 {
			return m, nil
		}
		if m.cursor < 0 {
			m.cursor = 0
		} else if m.cursor < m.catalog.Len()-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if m.cursor >= 0 {
			m.catalog.Toggle(m.cursor)
		}

	case key.Matches(msg, m.keys.Start):
		if t := m.ctrl.StartNext(); t != nil {
			return m, listenTransfer(t)
		}

	case key.Matches(msg, m.keys.ClearSel):
		m.cursor = -1

	case key.Matches(msg, m.keys.SwitchSel):
		if m.cursor >= 0 {
			m.cursor = -1
		} else if m.catalog.Len() > 0 {
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Copy):
		return m.copyPath()
	}

	return m, nil
}

// copyPath puts the selected attachment's local path on the clipboard, or
// its remote URL when it has not been downloaded yet.
func (m Model) copyPath() (tea.Model, tea.Cmd) {
	if m.cursor < 0 {
		return m, nil
	}
	att := m.catalog.At(m.cursor)

	text := att.Locator
	local := att.Status == catalog.StatusDownloaded
	if local {
		text = filepath.Join(m.folder, att.Filename)
	}

	if err := clipboard.WriteAll(text); err != nil {
		slog.Error("clipboard write failed", "error", err)
		m.notice = "Clipboard unavailable"
	} else if local {
		m.notice = "Copied path to clipboard"
	} else {
		m.notice = "Copied URL to clipboard"
	}

	m.noticeID++
	id := m.noticeID
	return m, tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
