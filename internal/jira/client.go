// Package jira is a minimal client for the two REST calls the tool
// makes: listing an issue's attachments and streaming one attachment's
// content.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vfaronov/httpheader"
	"golang.org/x/oauth2"

	"github.com/attache-dl/attache/internal/logctx"
)

// Attachment is the subset of Jira's attachment JSON the tool uses.
// Content is the URL the attachment's bytes are served from.
type Attachment struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Created  string `json:"created"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

type issueResponse struct {
	Fields struct {
		Attachment []Attachment `json:"attachment"`
	} `json:"fields"`
}

// Client talks to one Jira server. With a user it authenticates with
// basic auth (API token as the password); with only a token it sends the
// token as a bearer credential, as self-hosted instances expect.
type Client struct {
	http    *http.Client
	baseURL string
	user    string
	token   string
}

func NewClient(baseURL, user, token string) *Client {
	httpClient := &http.Client{}
	if user == "" && token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    user,
		token:   token,
	}
}

// ListAttachments fetches the attachment metadata of one issue.
func (c *Client) ListAttachments(ctx context.Context, issue string) ([]Attachment, error) {
	u := fmt.Sprintf("%s/rest/api/2/issue/%s?fields=attachment", c.baseURL, url.PathEscape(issue))
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, &FetchError{Operation: "list attachments", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Operation: "list attachments", StatusCode: resp.StatusCode}
	}

	var payload issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &FetchError{Operation: "list attachments", Err: err}
	}

	logctx.LoggerFromContext(ctx).Debug("attachment listing fetched",
		"issue", issue, "count", len(payload.Fields.Attachment))
	return payload.Fields.Attachment, nil
}

// OpenDownloadStream starts streaming an attachment's bytes; the caller
// owns the returned body. The length is <= 0 when the server does not
// declare one.
func (c *Client) OpenDownloadStream(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	resp, err := c.get(ctx, locator)
	if err != nil {
		return nil, 0, &FetchError{Operation: "open download", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, &FetchError{Operation: "open download", StatusCode: resp.StatusCode}
	}

	logAdvertisedName(ctx, resp)
	return resp.Body, resp.ContentLength, nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.token)
	}
	return c.http.Do(req)
}

// logAdvertisedName records the filename the server puts in
// Content-Disposition. The catalog's filename alone decides the path on
// disk.
func logAdvertisedName(ctx context.Context, resp *http.Response) {
	dtype, filename, _ := httpheader.ContentDisposition(resp.Header)
	if dtype == "" || filename == "" {
		return
	}
	logctx.LoggerFromContext(ctx).Debug("server advertised filename",
		"disposition", dtype, "filename", filename)
}
