package monday

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tracknest/tracker-mcp-go/internal/httpx"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// DefaultEndpoint is the Monday.com GraphQL endpoint. An org can
// override it for mock or regional deployments.
const DefaultEndpoint = "https://api.monday.com/v2"

// Client speaks the Monday.com GraphQL API. Every call is a POST of
// {query, variables} against a single endpoint.
type Client struct {
	http *httpx.Client
}

// NewClient builds a Monday client authenticated with a personal API
// token.
func NewClient(endpoint, apiToken string, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Client{
		http: httpx.NewClient(httpx.ClientConfig{
			BaseURL: endpoint,
			Auth:    httpx.BearerToken{Token: apiToken},
			Headers: map[string]string{"API-Version": "2024-10"},
			Logger:  logger,
		}),
	}
}

// Query executes a GraphQL document and returns the data object.
// GraphQL-level errors arrive with HTTP 200 and an errors array; they
// are folded into the provider error taxonomy here.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (map[string]any, error) {
	payload := map[string]any{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}

	resp, err := c.http.PostJSON(ctx, "", payload)
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, trackererr.FromStatus(ProviderKey, resp.StatusCode, "", "", strings.TrimSpace(string(resp.Body)))
	}

	var body struct {
		Data   map[string]any `json:"data"`
		Errors []struct {
			Message string `json:"message"`
			Extensions struct {
				Code string `json:"code"`
			} `json:"extensions"`
		} `json:"errors"`
	}
	if err := resp.JSON(&body); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	if len(body.Errors) > 0 {
		first := body.Errors[0]
		switch first.Extensions.Code {
		case "USER_UNAUTHORIZED", "UNAUTHORIZED":
			return nil, &trackererr.AccessDeniedError{Detail: first.Message}
		default:
			return nil, &trackererr.UpstreamError{Provider: ProviderKey, Detail: first.Message}
		}
	}

	return body.Data, nil
}

func objects(body map[string]any, key string) []map[string]any {
	raw, _ := body[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}

	return out
}

const boardFields = `id name workspace { id name }`

// Boards lists the account's active boards.
func (c *Client) Boards(ctx context.Context) ([]map[string]any, error) {
	data, err := c.Query(ctx, fmt.Sprintf(`query { boards (limit: 100, state: active) { %s } }`, boardFields), nil)
	if err != nil {
		return nil, err
	}

	return objects(data, "boards"), nil
}

const itemFields = `
	id name board { id name }
	column_values { id type text }
	creator { id name }
`

// BoardItems returns the items of one board, or of every board when
// boardID is zero.
func (c *Client) BoardItems(ctx context.Context, boardID int64, limit int) ([]map[string]any, error) {
	boardArgs := "limit: 100"
	if boardID != 0 {
		boardArgs = fmt.Sprintf("ids: [%d]", boardID)
	}
	query := fmt.Sprintf(`query { boards (%s) { items_page (limit: %d) { items { %s } } } }`, boardArgs, limit, itemFields)

	data, err := c.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	for _, board := range objects(data, "boards") {
		page, _ := board["items_page"].(map[string]any)
		items = append(items, objects(page, "items")...)
	}

	return items, nil
}

// Item fetches one item with its updates and assets.
func (c *Client) Item(ctx context.Context, itemID int64) (map[string]any, error) {
	query := fmt.Sprintf(`query {
		items (ids: [%d]) {
			%s
			updates (limit: 100) { id text_body creator { id name } created_at assets { id name file_size url public_url } }
			assets { id name file_size file_extension url public_url uploaded_by { id name } created_at }
		}
	}`, itemID, itemFields)

	data, err := c.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	items := objects(data, "items")
	if len(items) == 0 {
		return nil, &trackererr.NotFoundError{Kind: "issue", ID: fmt.Sprintf("%d", itemID)}
	}

	return items[0], nil
}

// TimeTracking returns every item carrying time tracking history,
// with the per-session records embedded. Monday has no server-side
// date filter on this surface; callers window the result.
func (c *Client) TimeTracking(ctx context.Context) ([]map[string]any, error) {
	query := `query {
		boards (limit: 100, state: active) {
			id
			items_page (limit: 100) {
				items {
					id name board { id }
					column_values (types: [time_tracking]) {
						... on TimeTrackingValue {
							history { id started_at ended_at started_user_id manually_entered_start_time }
						}
					}
				}
			}
		}
	}`

	data, err := c.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	for _, board := range objects(data, "boards") {
		page, _ := board["items_page"].(map[string]any)
		items = append(items, objects(page, "items")...)
	}

	return items, nil
}

// Asset fetches one file's metadata.
func (c *Client) Asset(ctx context.Context, assetID int64) (map[string]any, error) {
	query := fmt.Sprintf(`query { assets (ids: [%d]) { id name file_size file_extension url public_url uploaded_by { id name } created_at } }`, assetID)

	data, err := c.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	assets := objects(data, "assets")
	if len(assets) == 0 {
		return nil, &trackererr.NotFoundError{Kind: "attachment", ID: fmt.Sprintf("%d", assetID)}
	}

	return assets[0], nil
}

// Download fetches an asset's bytes through its public URL.
func (c *Client) Download(ctx context.Context, publicURL string) ([]byte, error) {
	resp, err := c.http.GetURL(ctx, publicURL)
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, trackererr.FromStatus(ProviderKey, resp.StatusCode, "attachment", "", "")
	}

	return resp.Body, nil
}

// Me returns the token's owning user.
func (c *Client) Me(ctx context.Context) (map[string]any, error) {
	data, err := c.Query(ctx, `query { me { id name email } }`, nil)
	if err != nil {
		return nil, err
	}

	me, _ := data["me"].(map[string]any)
	if me == nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Detail: "me query returned no user"}
	}

	return me, nil
}
