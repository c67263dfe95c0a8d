// Package testutil provides a canned Jira server for exercising the
// listing and download paths end to end.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// IssueServer serves one issue's attachment listing plus the attachment
// content endpoints the listing points at.
type IssueServer struct {
	Server *httptest.Server

	issue       string
	listStatus  int
	attachments []*fixture

	// Tracking
	ListRequests    atomic.Int64
	ContentRequests atomic.Int64
}

type fixture struct {
	name     string
	mimeType string
	created  string
	body     []byte
	status   int
	omitLen  bool
	latency  time.Duration
}

// IssueServerOption is a function that configures an IssueServer.
type IssueServerOption func(*IssueServer)

// WithIssue sets the issue key the listing endpoint answers for.
func WithIssue(key string) IssueServerOption {
	return func(s *IssueServer) {
		s.issue = key
	}
}

// WithAttachment adds an attachment served normally.
func WithAttachment(name string, body []byte) IssueServerOption {
	return func(s *IssueServer) {
		s.attachments = append(s.attachments, newFixture(name, body))
	}
}

// WithTypedAttachment adds an attachment whose listing carries a MIME
// type.
func WithTypedAttachment(name, mimeType string, body []byte) IssueServerOption {
	return func(s *IssueServer) {
		f := newFixture(name, body)
		f.mimeType = mimeType
		s.attachments = append(s.attachments, f)
	}
}

// WithBrokenAttachment adds an attachment whose content endpoint answers
// with the given status.
func WithBrokenAttachment(name string, status int) IssueServerOption {
	return func(s *IssueServer) {
		f := newFixture(name, nil)
		f.status = status
		s.attachments = append(s.attachments, f)
	}
}

// WithChunkedAttachment adds an attachment served without a length
// header.
func WithChunkedAttachment(name string, body []byte) IssueServerOption {
	return func(s *IssueServer) {
		f := newFixture(name, body)
		f.omitLen = true
		s.attachments = append(s.attachments, f)
	}
}

// WithSlowAttachment adds an attachment served in 4KB chunks with a pause
// between them.
func WithSlowAttachment(name string, body []byte, perChunk time.Duration) IssueServerOption {
	return func(s *IssueServer) {
		f := newFixture(name, body)
		f.latency = perChunk
		s.attachments = append(s.attachments, f)
	}
}

// WithListStatus makes the listing endpoint fail with the given status.
func WithListStatus(status int) IssueServerOption {
	return func(s *IssueServer) {
		s.listStatus = status
	}
}

func newFixture(name string, body []byte) *fixture {
	return &fixture{
		name:    name,
		created: "2024-01-15T10:30:00.000+0000",
		body:    body,
	}
}

// NewIssueServerT starts an IssueServer bound to IPv4 and skips the test
// if binding fails.
func NewIssueServerT(t *testing.T, opts ...IssueServerOption) *IssueServer {
	t.Helper()
	s := &IssueServer{issue: "DEMO-1"}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = NewHTTPServerT(t, http.HandlerFunc(s.handle))
	return s
}

// URL returns the server's URL.
func (s *IssueServer) URL() string {
	return s.Server.URL
}

// Issue returns the issue key the server answers for.
func (s *IssueServer) Issue() string {
	return s.issue
}

// Close shuts down the server.
func (s *IssueServer) Close() {
	if s.Server != nil {
		s.Server.Close()
	}
}

func (s *IssueServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/rest/api/2/issue/"):
		s.handleList(w, r)
	case strings.HasPrefix(r.URL.Path, "/secure/attachment/"):
		s.handleContent(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *IssueServer) handleList(w http.ResponseWriter, r *http.Request) {
	s.ListRequests.Add(1)

	if s.listStatus != 0 {
		http.Error(w, "simulated failure", s.listStatus)
		return
	}
	if key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/"); key != s.issue {
		http.NotFound(w, r)
		return
	}

	type listAttachment struct {
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Created  string `json:"created"`
		MimeType string `json:"mimeType,omitempty"`
		Content  string `json:"content"`
	}
	var resp struct {
		Fields struct {
			Attachment []listAttachment `json:"attachment"`
		} `json:"fields"`
	}
	for i, f := range s.attachments {
		resp.Fields.Attachment = append(resp.Fields.Attachment, listAttachment{
			Filename: f.name,
			Size:     int64(len(f.body)),
			Created:  f.created,
			MimeType: f.mimeType,
			Content:  fmt.Sprintf("%s/secure/attachment/%d/%s", s.Server.URL, 10001+i, f.name),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *IssueServer) handleContent(w http.ResponseWriter, r *http.Request) {
	s.ContentRequests.Add(1)

	name := path.Base(r.URL.Path)
	var f *fixture
	for _, cand := range s.attachments {
		if cand.name == name {
			f = cand
			break
		}
	}
	if f == nil {
		http.NotFound(w, r)
		return
	}
	if f.status != 0 && f.status != http.StatusOK {
		http.Error(w, "simulated failure", f.status)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.name))
	if f.omitLen {
		// Flushing before the first write forces chunked encoding.
		w.(http.Flusher).Flush()
	} else {
		w.Header().Set("Content-Length", strconv.Itoa(len(f.body)))
	}

	if f.latency <= 0 {
		_, _ = w.Write(f.body)
		return
	}
	flusher := w.(http.Flusher)
	for off := 0; off < len(f.body); off += 4096 {
		end := min(off+4096, len(f.body))
		if _, err := w.Write(f.body[off:end]); err != nil {
			return
		}
		flusher.Flush()
		time.Sleep(f.latency)
	}
}
