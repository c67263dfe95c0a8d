package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/attache-dl/attache/internal/catalog"
)

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.quitting {
		return ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTable(),
		m.renderStatusPanel(),
		m.help.View(m.keys),
	)
}

// renderTable draws the attachment list inside a titled box.
func (m Model) renderTable() string {
	width := m.width
	if width < minBoxWidth {
		width = minBoxWidth
	}
	innerWidth := width - 2

	nameWidth := innerWidth - glyphColWidth - sizeColWidth - createdColWidth - 5
	if nameWidth < 8 {
		nameWidth = 8
	}

	header := fmt.Sprintf("%s %s %*s  %s",
		strings.Repeat(" ", glyphColWidth),
		padCell("Filename", nameWidth),
		sizeColWidth, "Size",
		"Created")

	lines := []string{HeaderStyle.Render(header), ""}
	for i := 0; i < m.catalog.Len(); i++ {
		lines = append(lines, m.renderRow(i, nameWidth))
	}

	title := fmt.Sprintf("%s Attachments", m.issue)
	return renderTitledBox(title, strings.Join(lines, "\n"), width)
}

func (m Model) renderRow(i, nameWidth int) string {
	att := m.catalog.At(i)

	glyphCell := lipgloss.NewStyle().
		Width(glyphColWidth).
		Align(lipgloss.Right)
	if i != m.cursor {
		glyphCell = glyphCell.Foreground(stateColor(att.Status))
	}

	line := fmt.Sprintf("%s %s %*s  %s",
		glyphCell.Render(m.stateGlyph(att)),
		padCell(truncateString(att.Filename, nameWidth), nameWidth),
		sizeColWidth, humanize.Bytes(uint64(att.Size)),
		att.Created)

	if i == m.cursor {
		return SelectedRowStyle.Render(line)
	}
	return line
}

// stateGlyph renders the state column of one row.
func (m Model) stateGlyph(att catalog.Attachment) string {
	switch att.Status {
	case catalog.StatusQueued:
		return ">"
	case catalog.StatusDownloading:
		if p := att.Percent(); p >= 0 {
			return fmt.Sprintf("%d%%", p)
		}
		return m.spinner.View()
	case catalog.StatusDownloaded:
		return "✓"
	case catalog.StatusFailed:
		return `/!\`
	}
	return "·"
}

// renderStatusPanel shows the transient notice when one is pending and the
// selected row's state otherwise.
func (m Model) renderStatusPanel() string {
	width := m.width
	if width < minBoxWidth {
		width = minBoxWidth
	}

	var parts []string
	switch {
	case m.notice != "":
		parts = []string{NoticeStyle.Render(m.notice)}
	case m.cursor < 0:
		parts = []string{MetaStyle.Render("No attachment selected.")}
	default:
		parts = []string{m.statusLine()}
		att := m.catalog.At(m.cursor)
		if att.MimeType != "" {
			parts = append(parts, MetaStyle.Render(att.MimeType))
		}
		if att.Status == catalog.StatusDownloading && att.Total > 0 {
			bar := m.progress
			bar.Width = width - 4
			if bar.Width > maxProgressWidth {
				bar.Width = maxProgressWidth
			}
			parts = append(parts, bar.ViewAs(float64(att.Downloaded)/float64(att.Total)))
		}
	}

	return renderTitledBox("Status", strings.Join(parts, "\n"), width)
}

// statusLine describes the selected row. It is recomputed from the catalog
// on every frame, never cached.
func (m Model) statusLine() string {
	if m.cursor < 0 || m.cursor >= m.catalog.Len() {
		return ""
	}
	att := m.catalog.At(m.cursor)

	switch att.Status {
	case catalog.StatusQueued:
		return fmt.Sprintf("Attachment '%s' is queued for download.", att.Filename)
	case catalog.StatusDownloading:
		if att.Total > 0 {
			return fmt.Sprintf("Downloading '%s'... %s / %s", att.Filename,
				humanize.Bytes(uint64(att.Downloaded)), humanize.Bytes(uint64(att.Total)))
		}
		return fmt.Sprintf("Downloading '%s'... %s downloaded", att.Filename,
			humanize.Bytes(uint64(att.Downloaded)))
	case catalog.StatusDownloaded:
		return fmt.Sprintf("Attachment '%s' has been downloaded.", att.Filename)
	case catalog.StatusFailed:
		return fmt.Sprintf("Attachment '%s' failed to download: %s", att.Filename, att.Err)
	}
	return fmt.Sprintf("Attachment '%s' is not downloaded.", att.Filename)
}

// renderTitledBox draws a rounded box with the title embedded in the top
// border, btop style. Height follows the content.
func renderTitledBox(title, content string, width int) string {
	const (
		topLeft     = "╭"
		topRight    = "╮"
		bottomLeft  = "╰"
		bottomRight = "╯"
		horizontal  = "─"
		vertical    = "│"
	)

	innerWidth := width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}

	titleText := fmt.Sprintf(" %s ", title)
	remaining := innerWidth - lipgloss.Width(titleText) - 1
	if remaining < 0 {
		remaining = 0
	}

	top := BorderStyle.Render(topLeft+horizontal) +
		TitleStyle.Render(titleText) +
		BorderStyle.Render(strings.Repeat(horizontal, remaining)+topRight)
	bottom := BorderStyle.Render(bottomLeft + strings.Repeat(horizontal, innerWidth) + bottomRight)

	side := BorderStyle.Render(vertical)
	var body []string
	for _, line := range strings.Split(content, "\n") {
		lineWidth := lipgloss.Width(line)
		if lineWidth < innerWidth {
			line += strings.Repeat(" ", innerWidth-lineWidth)
		} else if lineWidth > innerWidth {
			line = truncateString(line, innerWidth)
		}
		body = append(body, side+line+side)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		strings.Join(body, "\n"),
		bottom,
	)
}

func padCell(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

// truncateString shortens plain text to maxLen cells.
func truncateString(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
