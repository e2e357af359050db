package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asakatsu/internal/service"
)

// failingHolders 让 Holders 查询失败，其余查询照常
type failingHolders struct {
	*service.TitleService
	err error
}

func (f failingHolders) Holders(context.Context, string) ([]service.TitleHolder, error) {
	return nil, f.err
}

func TestListTitlesHidesUnheldHiddenTitles(t *testing.T) {
	f := setupHandlerFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/titles", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var payload struct {
		Titles []service.CatalogEntry `json:"titles"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode titles: %v", err)
	}
	if len(payload.Titles) != 4 {
		t.Fatalf("expected 4 visible titles, got %d", len(payload.Titles))
	}
	for _, entry := range payload.Titles {
		if entry.Hidden {
			t.Fatalf("hidden title %s leaked", entry.Code)
		}
	}

	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/titles/"+service.TitleNoon3+"/holders", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected hidden title without holders to be 404, got %d", rr.Code)
	}
	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/titles/unknown/holders", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected unknown title to be 404, got %d", rr.Code)
	}
}

func TestTitleHoldersAndUserTitles(t *testing.T) {
	f := setupHandlerFixture(t)
	ctx := t.Context()

	if _, err := f.api.Titles().GrantIfAbsent(ctx, "alice", service.TitleNoSleep3, "2024-02-20"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if _, err := f.api.Titles().GrantIfAbsent(ctx, "alice", service.TitleStreak3, "2024-02-25"); err != nil {
		t.Fatalf("grant: %v", err)
	}

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/titles/"+service.TitleNoSleep3+"/holders", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"name":"alice"`) {
		t.Fatalf("expected alice as holder, got %s", rr.Body.String())
	}

	rr = f.do(httptest.NewRequest(http.MethodGet, "/api/users/alice/titles", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var payload struct {
		Titles []service.UserTitle `json:"titles"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode user titles: %v", err)
	}
	if len(payload.Titles) != 2 || payload.Titles[0].Code != service.TitleStreak3 {
		t.Fatalf("unexpected user titles: %+v", payload.Titles)
	}

	page := f.do(httptest.NewRequest(http.MethodGet, "/titles", nil))
	if page.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, page.Code)
	}
	name, data := f.renderer.lastData(t)
	if name != "titles.html" {
		t.Fatalf("expected titles.html, got %s", name)
	}
	views, ok := data["titles"].([]catalogView)
	if !ok || len(views) != 5 {
		t.Fatalf("expected held hidden title to join the catalog, got %#v", data["titles"])
	}

	page = f.do(httptest.NewRequest(http.MethodGet, "/users/alice/titles", nil))
	if page.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, page.Code)
	}
	_, data = f.renderer.lastData(t)
	if data["title"] != "alice さんの称号" {
		t.Fatalf("unexpected page title %v", data["title"])
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	html, err := renderMarkdown("**bold** <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("renderMarkdown returned error: %v", err)
	}
	if !strings.Contains(string(html), "<strong>bold</strong>") {
		t.Fatalf("expected rendered markdown, got %q", html)
	}
	if strings.Contains(string(html), "<script>") {
		t.Fatalf("expected script to be stripped, got %q", html)
	}
}

func TestShowTitlesFailsWhenHoldersLookupFails(t *testing.T) {
	f := setupHandlerFixture(t)
	ctx := t.Context()

	if _, err := f.api.Titles().GrantIfAbsent(ctx, "alice", service.TitleStreak3, "2024-02-25"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	f.api.titleReads = failingHolders{
		TitleService: f.api.Titles(),
		err:          fmt.Errorf("holders: %w", service.ErrStorageUnavailable),
	}

	page := f.do(httptest.NewRequest(http.MethodGet, "/titles", nil))
	if page.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, page.Code)
	}
	name, data := f.renderer.lastData(t)
	if name != "titles.html" {
		t.Fatalf("expected titles.html, got %s", name)
	}
	if data["error"] == nil || data["error"] == "" {
		t.Fatalf("expected an error message, got %#v", data)
	}
	if _, ok := data["titles"]; ok {
		t.Fatalf("expected no partial catalog, got %#v", data["titles"])
	}

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/titles/"+service.TitleStreak3+"/holders", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected holders api to be %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestUserTitlesRejectInvalidName(t *testing.T) {
	f := setupHandlerFixture(t)

	for _, escaped := range []string{
		"%20%20",
		"al%01ice",
		"%FF",
		strings.Repeat("%E3%81%82", 65),
	} {
		rr := f.do(httptest.NewRequest(http.MethodGet, "/api/users/"+escaped+"/titles", nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected api status %d, got %d", escaped, http.StatusBadRequest, rr.Code)
		}

		page := f.do(httptest.NewRequest(http.MethodGet, "/users/"+escaped+"/titles", nil))
		if page.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected page status %d, got %d", escaped, http.StatusBadRequest, page.Code)
		}
		name, data := f.renderer.lastData(t)
		if name != "user_titles.html" || data["error"] == nil {
			t.Fatalf("%s: expected user_titles.html with an error, got %s %#v", escaped, name, data)
		}
	}

	rr := f.do(httptest.NewRequest(http.MethodGet, "/api/users/%20alice%20/titles", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"name":"alice"`) {
		t.Fatalf("expected padded name to be trimmed, got %d %s", rr.Code, rr.Body.String())
	}
}
