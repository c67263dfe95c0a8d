// Package catalog holds the per-attachment state machine behind the
// interactive listing: which rows are queued, in flight, on disk or
// failed, and the live byte counts for the row being transferred.
package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"github.com/attache-dl/attache/internal/download"
)

// Status is the download lifecycle position of one attachment.
type Status int

const (
	StatusNotDownloaded Status = iota
	StatusQueued
	StatusDownloading
	StatusDownloaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotDownloaded:
		return "not downloaded"
	case StatusQueued:
		return "queued"
	case StatusDownloading:
		return "downloading"
	case StatusDownloaded:
		return "downloaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Attachment is one row of the catalog. Downloaded and Total are only
// meaningful while the row is downloading, Err only while it is failed.
type Attachment struct {
	Filename string
	Locator  string
	Size     int64
	Created  string
	MimeType string

	Status     Status
	Downloaded int64
	Total      int64 // <= 0 while the remote has not reported a length
	Err        string
}

// Percent returns whole-number completion, or -1 when the total is
// unknown.
func (a Attachment) Percent() int {
	if a.Total <= 0 {
		return -1
	}
	return int(a.Downloaded * 100 / a.Total)
}

// Item carries the server-side attachment metadata a catalog row is built
// from. Created is the raw timestamp as the server sent it.
type Item struct {
	Filename string
	Locator  string
	Size     int64
	Created  string
	MimeType string
}

// Catalog tracks every attachment of one issue. It is not safe for
// concurrent use; the interactive loop owns it.
type Catalog struct {
	items []Attachment
}

// New builds a catalog with every row not downloaded. Timestamps are
// reformatted for display and missing MIME types are guessed from the
// file extension.
func New(items []Item) *Catalog {
	c := &Catalog{items: make([]Attachment, 0, len(items))}
	for _, it := range items {
		c.items = append(c.items, Attachment{
			Filename: it.Filename,
			Locator:  it.Locator,
			Size:     it.Size,
			Created:  formatCreated(it.Created),
			MimeType: mimeType(it),
			Status:   StatusNotDownloaded,
		})
	}
	return c
}

// InitFromDir marks rows whose file already exists in dir as downloaded.
// A probe failure other than absence shows up as a failed row.
func (c *Catalog) InitFromDir(dir string) {
	for i := range c.items {
		_, err := os.Stat(filepath.Join(dir, c.items[i].Filename))
		switch {
		case err == nil:
			c.items[i].Status = StatusDownloaded
		case errors.Is(err, fs.ErrNotExist):
			c.items[i].Status = StatusNotDownloaded
		default:
			c.items[i].Status = StatusFailed
			c.items[i].Err = err.Error()
		}
	}
}

// Toggle flips queue membership of row i. Rows that are downloading or
// already downloaded are left alone, and a failed row re-enters the queue.
func (c *Catalog) Toggle(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	switch c.items[i].Status {
	case StatusNotDownloaded, StatusFailed:
		c.items[i].Status = StatusQueued
		c.items[i].Err = ""
	case StatusQueued:
		c.items[i].Status = StatusNotDownloaded
	}
}

// Apply folds a transfer event into row i.
func (c *Catalog) Apply(i int, evt download.Event) {
	if i < 0 || i >= len(c.items) {
		return
	}
	row := &c.items[i]
	switch evt.Kind {
	case download.KindStarting:
		row.Status = StatusDownloading
		row.Downloaded = 0
		row.Total = 0
		row.Err = ""
	case download.KindProgress:
		row.Status = StatusDownloading
		row.Downloaded = evt.Downloaded
		row.Total = evt.Total
	case download.KindFinished:
		row.Status = StatusDownloaded
	case download.KindError:
		row.Status = StatusFailed
		row.Err = evt.Err
	}
}

// NextQueued returns the lowest queued row index.
func (c *Catalog) NextQueued() (int, bool) {
	for i := range c.items {
		if c.items[i].Status == StatusQueued {
			return i, true
		}
	}
	return 0, false
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// At returns a copy of row i.
func (c *Catalog) At(i int) Attachment {
	return c.items[i]
}

var createdLayouts = []string{
	"2006-01-02T15:04:05-0700", // Jira's REST timestamp
	time.RFC3339,
}

// formatCreated renders a server timestamp in local time for the listing.
// Unparseable values pass through untouched.
func formatCreated(raw string) string {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local().Format("2006-01-02 15:04")
		}
	}
	return raw
}

// mimeType guesses from the file extension when the server omits a type.
func mimeType(it Item) string {
	if it.MimeType != "" {
		return it.MimeType
	}
	ext := strings.TrimPrefix(filepath.Ext(it.Filename), ".")
	if t := filetype.GetType(ext); t != filetype.Unknown {
		return t.MIME.Value
	}
	return ""
}
