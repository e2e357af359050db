package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/asakatsu/internal/clock"
	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/handler"
	"github.com/asakatsu/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const e2eBaseURL = "http://asakatsu.test"

type e2eSuite struct {
	handler http.Handler
	browser *localClient
	clock   *clock.Fixed
	quiz    *service.QuizService
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

// Do 模拟浏览器发送请求；cookiejar 只接受带 http(s) scheme 与 host 的 URL
func (c *localClient) Do(req *http.Request) *http.Response {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tokyo, err := clock.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	clk := clock.NewFixed(time.Date(2024, 3, 1, 5, 30, 0, 0, tokyo))

	api := handler.NewAPI(gdb, clk, handler.Options{})
	catalog, err := service.DefaultCatalog()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	if err := api.Titles().Seed(t.Context(), catalog); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	r := SetupRouter(api, Config{
		SessionSecret: "e2e-secret",
		TemplateDir:   "../../web/template",
		StaticDir:     "../../web/static",
	})
	return &e2eSuite{
		handler: r,
		browser: newLocalClient(r),
		clock:   clk,
		quiz:    service.NewQuizService(service.DefaultQuizBank),
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

func (s *e2eSuite) answer(t *testing.T, name string, choice int) *http.Response {
	t.Helper()
	form := url.Values{}
	form.Set("name", name)
	form.Set("choice", strconv.Itoa(choice))
	req := httptest.NewRequest(http.MethodPost, e2eBaseURL+"/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.browser.Do(req)
}

func (s *e2eSuite) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp := s.browser.Do(httptest.NewRequest(http.MethodGet, e2eBaseURL+path, nil))
	return resp, readBody(t, resp)
}

func TestE2E_MorningLoginFlow(t *testing.T) {
	suite := newE2ESuite(t)

	resp, body := suite.get(t, "/result")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect to login without a result, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	start := suite.clock.Now()
	for i := 0; i < 3; i++ {
		suite.clock.Set(start.AddDate(0, 0, i))
		quiz := suite.quiz.ForDay(suite.clock.Now())

		resp, body = suite.get(t, "/")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("day %d: expected login page, got %d", i, resp.StatusCode)
		}
		if !strings.Contains(body, quiz.Question) {
			t.Fatalf("day %d: expected today's question on the login page", i)
		}

		resp = suite.answer(t, "alice", quiz.AnswerIndex)
		readBody(t, resp)
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/result" {
			t.Fatalf("day %d: expected redirect to result, got %d", i, resp.StatusCode)
		}

		resp, body = suite.get(t, "/result")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("day %d: expected result page, got %d", i, resp.StatusCode)
		}
		if !strings.Contains(body, "alice") {
			t.Fatalf("day %d: expected result to mention alice, got %s", i, body)
		}
	}
	if !strings.Contains(body, "三日坊主卒業") {
		t.Fatalf("expected streak title on the third day, got %s", body)
	}

	_, body = suite.get(t, "/")
	if !strings.Contains(body, `value="alice"`) {
		t.Fatalf("expected name to be prefilled from session")
	}

	quiz := suite.quiz.ForDay(suite.clock.Now())
	resp = suite.answer(t, "bob", (quiz.AnswerIndex+1)%len(quiz.Choices))
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "不正解") {
		t.Fatalf("expected wrong answer page, got %d", resp.StatusCode)
	}

	_, body = suite.get(t, "/today")
	if !strings.Contains(body, "alice") || strings.Contains(body, "bob") {
		t.Fatalf("expected only alice on today's board, got %s", body)
	}

	resp, body = suite.get(t, "/api/history?days=3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected history json, got %d", resp.StatusCode)
	}
	var history struct {
		Days []json.RawMessage `json:"days"`
	}
	if err := json.Unmarshal([]byte(body), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history.Days) != 3 {
		t.Fatalf("expected three days of history, got %d", len(history.Days))
	}

	_, body = suite.get(t, "/titles")
	if !strings.Contains(body, "三日坊主卒業") || !strings.Contains(body, "早起き王") {
		t.Fatalf("expected earned hidden title to appear in the catalog, got %s", body)
	}
}

func TestE2E_SessionCookieSurvivesRedirect(t *testing.T) {
	suite := newE2ESuite(t)
	quiz := suite.quiz.ForDay(suite.clock.Now())

	resp := suite.answer(t, "carol", quiz.AnswerIndex)
	readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect after a correct answer, got %d", resp.StatusCode)
	}

	base, err := url.Parse(e2eBaseURL + "/")
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	found := false
	for _, cookie := range suite.browser.jar.Cookies(base) {
		if cookie.Name == "asakatsu_session" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected session cookie to be stored after login")
	}

	resp, body := suite.get(t, resp.Header.Get("Location"))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "carol") {
		t.Fatalf("expected result page for carol, got %d", resp.StatusCode)
	}

	resp, _ = suite.get(t, "/result")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected the result flash to be consumed, got %d", resp.StatusCode)
	}
}
