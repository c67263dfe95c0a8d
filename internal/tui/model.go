package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/google/uuid"

	"github.com/attache-dl/attache/internal/catalog"
	"github.com/attache-dl/attache/internal/download"
	"github.com/attache-dl/attache/internal/queue"

	tea "github.com/charmbracelet/bubbletea"
)

// Model is the interactive attachment list. It owns the catalog and the
// queue controller; everything on screen derives from those two.
type Model struct {
	issue  string
	folder string

	catalog *catalog.Catalog
	ctrl    *queue.Controller

	// cursor is the selected row, -1 when nothing is selected.
	cursor int
	width  int
	height int

	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	notice   string
	noticeID int

	quitting bool
}

func NewModel(issue, folder string, cat *catalog.Catalog, ctrl *queue.Controller) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		issue:    issue,
		folder:   folder,
		catalog:  cat,
		ctrl:     ctrl,
		cursor:   -1,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     InputKeys,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// transferEventMsg carries one observed event of the transfer identified
// by id. Events from retired transfers are dropped by Update.
type transferEventMsg struct {
	id  uuid.UUID
	evt download.Event
}

// clearNoticeMsg retires the transient notice with the matching id.
type clearNoticeMsg struct {
	id int
}

// listenTransfer waits for the next event of t and hands it to Update.
// The sleep between wake-up and read lets a fast transfer coalesce its
// updates instead of flooding the loop.
func listenTransfer(t *queue.Transfer) tea.Cmd {
	return func() tea.Msg {
		if !t.Events.Wait() {
			return transferEventMsg{id: t.ID, evt: download.Failure("progress channel closed")}
		}
		time.Sleep(minEventInterval)
		return transferEventMsg{id: t.ID, evt: t.Events.Latest()}
	}
}
