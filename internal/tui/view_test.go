package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/attache-dl/attache/internal/catalog"
	"github.com/attache-dl/attache/internal/download"

	tea "github.com/charmbracelet/bubbletea"
)

func TestView_LoadingBeforeFirstWindowSize(t *testing.T) {
	m, _ := newTestModel(t, 2)

	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q before the first resize", got)
	}
}

func TestView_ListsAttachments(t *testing.T) {
	m, _ := newTestModel(t, 3)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	out := m.View()

	for _, want := range []string{
		"DEMO-1 Attachments",
		"Filename", "Size", "Created",
		"file-0.txt", "file-1.txt", "file-2.txt",
		"100 B", "200 B", "300 B",
		"2024-01-15",
		"Status",
		"No attachment selected.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q\n%s", want, out)
		}
	}
}

func TestView_EmptyAfterQuit(t *testing.T) {
	m, _ := newTestModel(t, 1)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	m, _ = press(t, m, keyRune('q'))

	if got := m.View(); got != "" {
		t.Errorf("View() = %q after quit, want empty", got)
	}
}

func TestStateGlyph(t *testing.T) {
	m, _ := newTestModel(t, 1)

	tests := []struct {
		name string
		att  catalog.Attachment
		want string
	}{
		{"not downloaded", catalog.Attachment{Status: catalog.StatusNotDownloaded}, "·"},
		{"queued", catalog.Attachment{Status: catalog.StatusQueued}, ">"},
		{"downloading", catalog.Attachment{Status: catalog.StatusDownloading, Downloaded: 50, Total: 200}, "25%"},
		{"complete", catalog.Attachment{Status: catalog.StatusDownloading, Downloaded: 200, Total: 200}, "100%"},
		{"downloaded", catalog.Attachment{Status: catalog.StatusDownloaded}, "✓"},
		{"failed", catalog.Attachment{Status: catalog.StatusFailed}, `/!\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.stateGlyph(tt.att); got != tt.want {
				t.Errorf("stateGlyph() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateGlyph_UnknownTotalShowsSpinner(t *testing.T) {
	m, _ := newTestModel(t, 1)

	att := catalog.Attachment{Status: catalog.StatusDownloading, Downloaded: 512, Total: 0}
	got := m.stateGlyph(att)
	if got == "" {
		t.Fatal("glyph is empty")
	}
	if strings.Contains(got, "%") {
		t.Errorf("glyph %q shows a percentage for an unknown total", got)
	}
}

func TestStatusLine(t *testing.T) {
	m, _ := newTestModel(t, 1)

	if got := m.statusLine(); got != "" {
		t.Errorf("statusLine() = %q with no selection, want empty", got)
	}

	m.cursor = 0
	set := func(evts ...download.Event) {
		for _, evt := range evts {
			m.catalog.Apply(0, evt)
		}
	}

	if got, want := m.statusLine(), "Attachment 'file-0.txt' is not downloaded."; got != want {
		t.Errorf("statusLine() = %q, want %q", got, want)
	}

	m.catalog.Toggle(0)
	if got, want := m.statusLine(), "Attachment 'file-0.txt' is queued for download."; got != want {
		t.Errorf("statusLine() = %q, want %q", got, want)
	}

	set(download.Starting(), download.Progress(50, 200))
	if got, want := m.statusLine(), "Downloading 'file-0.txt'... 50 B / 200 B"; got != want {
		t.Errorf("statusLine() = %q, want %q", got, want)
	}

	set(download.Progress(100, 0))
	if got, want := m.statusLine(), "Downloading 'file-0.txt'... 100 B downloaded"; got != want {
		t.Errorf("statusLine() = %q, want %q", got, want)
	}

	set(download.Finished())
	if got, want := m.statusLine(), "Attachment 'file-0.txt' has been downloaded."; got != want {
		t.Errorf("statusLine() = %q, want %q", got, want)
	}

	set(download.Starting(), download.Failure("HTTP 500"))
	if got, want := m.statusLine(), "Attachment 'file-0.txt' failed to download: HTTP 500"; got != want {
		t.Errorf("statusLine() = %q, want %q", got, want)
	}
}

func TestView_NoticeReplacesStatusLine(t *testing.T) {
	m, _ := newTestModel(t, 1)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	m.cursor = 0
	m.notice = "Copied URL to clipboard"

	out := m.View()
	if !strings.Contains(out, "Copied URL to clipboard") {
		t.Error("notice not rendered")
	}
	if strings.Contains(out, "is not downloaded") {
		t.Error("status line rendered alongside the notice")
	}
}

func TestView_ProgressBarForKnownTotal(t *testing.T) {
	m, _ := newTestModel(t, 1)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	m.cursor = 0
	m.catalog.Apply(0, download.Starting())
	m.catalog.Apply(0, download.Progress(50, 200))

	out := m.View()
	if !strings.Contains(out, "Downloading 'file-0.txt'... 50 B / 200 B") {
		t.Errorf("status line missing:\n%s", out)
	}
	if !strings.Contains(out, "25%") {
		t.Errorf("no progress indication in view:\n%s", out)
	}
}

func TestRenderTitledBox(t *testing.T) {
	box := renderTitledBox("Title", "a\nbb", 20)

	lines := strings.Split(box, "\n")
	if len(lines) != 4 {
		t.Fatalf("box has %d lines, want 4:\n%s", len(lines), box)
	}
	if !strings.Contains(lines[0], "Title") {
		t.Errorf("top border %q missing title", lines[0])
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 20 {
			t.Errorf("line %d width = %d, want 20: %q", i, w, line)
		}
	}
	if !strings.HasPrefix(lines[0], "╭") || !strings.HasPrefix(lines[3], "╰") {
		t.Error("box corners missing")
	}
}

func TestRenderTitledBox_TruncatesWideContent(t *testing.T) {
	box := renderTitledBox("T", strings.Repeat("x", 100), 20)

	for i, line := range strings.Split(box, "\n") {
		if w := lipgloss.Width(line); w != 20 {
			t.Errorf("line %d width = %d, want 20", i, w)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a-very-long-filename.txt", 10, "a-very-..."},
		{"abcdef", 3, "abc"},
		{"", 5, ""},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
