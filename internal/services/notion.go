// Notion API implementation of [Workspace]
//
// Payload layout based on https://developers.notion.com/reference/post-page
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	notionBaseURL = "https://api.notion.com"
	notionVersion = "2022-06-28"
)

type notionText struct {
	Content string `json:"content"`
}

type notionRichText struct {
	Type string     `json:"type,omitempty"`
	Text notionText `json:"text"`
}

type notionParagraph struct {
	RichText []notionRichText `json:"rich_text"`
}

type notionBlock struct {
	Object    string          `json:"object"`
	Type      string          `json:"type"`
	Paragraph notionParagraph `json:"paragraph"`
}

type notionTitle struct {
	Title []notionRichText `json:"title"`
}

type notionPage struct {
	Parent struct {
		PageID string `json:"page_id"`
	} `json:"parent"`
	Properties struct {
		Title notionTitle `json:"title"`
	} `json:"properties"`
	Children []notionBlock `json:"children"`
}

// NotionWorkspace implements [Workspace] against the Notion pages API.
type NotionWorkspace struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logBody    func(status int, body []byte)
}

// NewNotionWorkspace creates a workspace client with the given integration token.
func NewNotionWorkspace(token string, client *http.Client) *NotionWorkspace {
	if client == nil {
		client = http.DefaultClient
	}
	return &NotionWorkspace{
		baseURL:    notionBaseURL,
		token:      token,
		httpClient: client,
	}
}

// NewNotionWorkspaceWithBaseURL creates a workspace client against an
// arbitrary base URL. Used in tests.
func NewNotionWorkspaceWithBaseURL(baseURL, token string, client *http.Client) *NotionWorkspace {
	w := NewNotionWorkspace(token, client)
	w.baseURL = baseURL
	return w
}

// OnFailure registers a callback invoked with the response status and body
// whenever a page creation comes back non-2xx, so the caller can log the API
// error detail without it ever reaching the user.
func (w *NotionWorkspace) OnFailure(fn func(status int, body []byte)) {
	w.logBody = fn
}

// CreatePage creates a page under parentID with the given title and a single
// paragraph block holding body. Returns the HTTP status of the API call; the
// caller decides whether a non-2xx status is fatal. Creation is not
// idempotent, so failed calls are never retried here.
func (w *NotionWorkspace) CreatePage(ctx context.Context, parentID, title, body string) (int, error) {
	var page notionPage
	page.Parent.PageID = parentID
	page.Properties.Title.Title = []notionRichText{{Text: notionText{Content: title}}}
	page.Children = []notionBlock{
		{
			Object: "block",
			Type:   "paragraph",
			Paragraph: notionParagraph{
				RichText: []notionRichText{{Type: "text", Text: notionText{Content: body}}},
			},
		},
	}

	payload, err := json.Marshal(page)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal page payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/pages", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if w.logBody != nil {
			respBody, _ := io.ReadAll(resp.Body)
			w.logBody(resp.StatusCode, respBody)
		}
	}

	return resp.StatusCode, nil
}
