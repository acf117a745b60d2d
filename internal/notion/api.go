// Package notion replaces the contents of a Notion page with the duty
// report. Page access goes through BlockAPI so the publisher can run
// against the real API client or an in-memory page.
package notion

import (
	"context"
	"net/http"
	"time"

	"github.com/jomei/notionapi"
)

// APIVersion is the Notion-Version header sent with every request.
const APIVersion = "2022-06-28"

// Paragraph is a single paragraph block holding plain text. An empty
// Text renders as a blank line.
type Paragraph struct {
	Text string
}

// BlockAPI is the subset of the Notion block endpoints the publisher uses.
type BlockAPI interface {
	// ListChildren returns one page of child block IDs and the cursor for
	// the next page, or "" when there are no more.
	ListChildren(ctx context.Context, parentID, cursor string) (ids []string, next string, err error)

	// Archive deletes (archives) one block.
	Archive(ctx context.Context, blockID string) error

	// Append adds paragraphs to the end of parentID.
	Append(ctx context.Context, parentID string, paragraphs []Paragraph) error
}

// Client implements BlockAPI on top of the notionapi SDK.
type Client struct {
	api *notionapi.Client
}

// NewClient creates an API client for token. A nil httpClient gets a
// client with a 30 second timeout.
func NewClient(token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		api: notionapi.NewClient(notionapi.Token(token),
			notionapi.WithHTTPClient(httpClient),
			notionapi.WithVersion(APIVersion),
		),
	}
}

// ListChildren implements BlockAPI.
func (c *Client) ListChildren(ctx context.Context, parentID, cursor string) ([]string, string, error) {
	var pagination *notionapi.Pagination
	if cursor != "" {
		pagination = &notionapi.Pagination{StartCursor: notionapi.Cursor(cursor)}
	}

	resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(parentID), pagination)
	if err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(resp.Results))
	for _, b := range resp.Results {
		ids = append(ids, b.GetID().String())
	}

	next := ""
	if resp.HasMore {
		next = resp.NextCursor
	}
	return ids, next, nil
}

// Archive implements BlockAPI.
func (c *Client) Archive(ctx context.Context, blockID string) error {
	_, err := c.api.Block.Delete(ctx, notionapi.BlockID(blockID))
	return err
}

// Append implements BlockAPI.
func (c *Client) Append(ctx context.Context, parentID string, paragraphs []Paragraph) error {
	children := make([]notionapi.Block, 0, len(paragraphs))
	for _, p := range paragraphs {
		children = append(children, paragraphBlock(p))
	}

	_, err := c.api.Block.AppendChildren(ctx, notionapi.BlockID(parentID), &notionapi.AppendBlockChildrenRequest{
		Children: children,
	})
	return err
}

func paragraphBlock(p Paragraph) *notionapi.ParagraphBlock {
	richText := []notionapi.RichText{}
	if p.Text != "" {
		richText = append(richText, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: p.Text},
		})
	}
	return &notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{
			RichText: richText,
		},
	}
}
