package notion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// redirect sends every request to the test server regardless of host.
type redirect struct {
	target *url.URL
}

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

type recorded struct {
	method, path, query, version, auth string
	body                               []byte
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{
			method:  r.Method,
			path:    r.URL.Path,
			query:   r.URL.RawQuery,
			version: r.Header.Get("Notion-Version"),
			auth:    r.Header.Get("Authorization"),
			body:    body,
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	target, _ := url.Parse(srv.URL)
	return NewClient("secret_token", &http.Client{Transport: redirect{target: target}}), &reqs
}

const paragraphJSON = `{"object":"block","id":"%s","type":"paragraph","paragraph":{"rich_text":[]}}`

func TestClient_ListChildren(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_cursor") == "" {
			_, _ = io.WriteString(w, `{"object":"list","results":[`+
				strings.ReplaceAll(paragraphJSON, "%s", "aaaaaaaa-0000-0000-0000-000000000001")+`],"next_cursor":"cur-2","has_more":true}`)
			return
		}
		_, _ = io.WriteString(w, `{"object":"list","results":[`+
			strings.ReplaceAll(paragraphJSON, "%s", "aaaaaaaa-0000-0000-0000-000000000002")+`],"next_cursor":null,"has_more":false}`)
	})

	ids, next, err := c.ListChildren(context.Background(), "page-id", "")
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if !slices.Equal(ids, []string{"aaaaaaaa-0000-0000-0000-000000000001"}) || next != "cur-2" {
		t.Errorf("first page = %v, next %q", ids, next)
	}

	ids, next, err = c.ListChildren(context.Background(), "page-id", next)
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if len(ids) != 1 || next != "" {
		t.Errorf("second page = %v, next %q", ids, next)
	}

	first := (*reqs)[0]
	if first.method != http.MethodGet || first.path != "/v1/blocks/page-id/children" {
		t.Errorf("unexpected request %s %s", first.method, first.path)
	}
	if first.version != APIVersion {
		t.Errorf("Notion-Version = %q", first.version)
	}
	if first.auth != "Bearer secret_token" {
		t.Errorf("Authorization = %q", first.auth)
	}
	if !strings.Contains((*reqs)[1].query, "start_cursor=cur-2") {
		t.Errorf("cursor not sent: %q", (*reqs)[1].query)
	}
}

func TestClient_Archive(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.ReplaceAll(paragraphJSON, "%s", "b1"))
	})

	if err := c.Archive(context.Background(), "b1"); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	got := (*reqs)[0]
	if got.method != http.MethodDelete || got.path != "/v1/blocks/b1" {
		t.Errorf("unexpected request %s %s", got.method, got.path)
	}
}

func TestClient_Append(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"object":"list","results":[]}`)
	})

	err := c.Append(context.Background(), "page-id", []Paragraph{{Text: "1日（月）"}, {}})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got := (*reqs)[0]
	if got.method != http.MethodPatch || got.path != "/v1/blocks/page-id/children" {
		t.Errorf("unexpected request %s %s", got.method, got.path)
	}

	var body struct {
		Children []struct {
			Object    string `json:"object"`
			Type      string `json:"type"`
			Paragraph struct {
				RichText []struct {
					Type string `json:"type"`
					Text struct {
						Content string `json:"content"`
					} `json:"text"`
				} `json:"rich_text"`
			} `json:"paragraph"`
		} `json:"children"`
	}
	if err := json.Unmarshal(got.body, &body); err != nil {
		t.Fatalf("invalid request body: %v\n%s", err, got.body)
	}
	if len(body.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(body.Children))
	}
	c0 := body.Children[0]
	if c0.Object != "block" || c0.Type != "paragraph" || len(c0.Paragraph.RichText) != 1 {
		t.Fatalf("unexpected first child %+v", c0)
	}
	if c0.Paragraph.RichText[0].Type != "text" || c0.Paragraph.RichText[0].Text.Content != "1日（月）" {
		t.Errorf("unexpected rich text %+v", c0.Paragraph.RichText[0])
	}
	if n := len(body.Children[1].Paragraph.RichText); n != 0 {
		t.Errorf("blank line should have no rich text, got %d", n)
	}
}

func TestRateLimited_PassesThrough(t *testing.T) {
	page := newFakePage(2)
	api := RateLimited(page, rate.Inf, 1)

	ids, _, err := api.ListChildren(context.Background(), "page", "")
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListChildren() = %v, %v", ids, err)
	}
	if err := api.Archive(context.Background(), ids[0]); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if err := api.Append(context.Background(), "page", []Paragraph{{Text: "x"}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(page.blocks) != 2 {
		t.Errorf("expected 2 blocks, got %v", page.blocks)
	}
}

func TestRateLimited_WaitHonoursContext(t *testing.T) {
	page := newFakePage(0)
	api := RateLimited(page, rate.Every(time.Hour), 1)

	// the first call spends the burst
	if _, _, err := api.ListChildren(context.Background(), "page", ""); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := api.Archive(ctx, "x"); err == nil {
		t.Fatal("expected limiter wait to fail")
	}
	if page.archives != 0 {
		t.Error("archive should not reach the API")
	}
}
