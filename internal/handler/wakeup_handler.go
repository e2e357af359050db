package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/logger"
	"github.com/asakatsu/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionNameKey = "name"
	resultFlashKey = "login_result"
)

type wakeupPayload struct {
	Name   string `json:"name"`
	Choice *int   `json:"choice"`
}

type wakeupEntry struct {
	Name      string `json:"name"`
	TimeOfDay string `json:"time_of_day"`
}

type historyDay struct {
	Day    string        `json:"day"`
	Events []wakeupEntry `json:"events"`
}

// grantedTitleView 是结果页展示的称号
type grantedTitleView struct {
	User        string
	Code        string
	Name        string
	Description template.HTML
	Hidden      bool
}

// ShowLogin 渲染答题登录页，名字从会话中回填
func (a *API) ShowLogin(c *gin.Context) {
	a.renderLogin(c, http.StatusOK, sessionName(c), "")
}

func (a *API) renderLogin(c *gin.Context, status int, name, errMessage string) {
	quiz := a.attendance.QuizFor(a.now())
	data := gin.H{
		"title":    a.text(c, msgLoginTitle),
		"question": quiz.Question,
		"choices":  quiz.Choices,
		"name":     name,
	}
	if errMessage != "" {
		data["error"] = errMessage
	}
	a.renderHTML(c, status, "index.html", data)
}

// SubmitLogin 处理答题表单，答对后记录并跳转到结果页
func (a *API) SubmitLogin(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	choice := strings.TrimSpace(c.PostForm("choice"))

	if name == "" {
		a.renderLogin(c, http.StatusBadRequest, name, a.text(c, msgNameRequired))
		return
	}
	if choice == "" {
		a.renderLogin(c, http.StatusBadRequest, name, a.text(c, msgChoiceRequired))
		return
	}

	result, err := a.attendance.SubmitAnswer(c.Request.Context(), name, choice, a.now())
	switch {
	case errors.Is(err, service.ErrWrongAnswer):
		rememberName(c, result.Name)
		a.renderHTML(c, http.StatusOK, "result.html", gin.H{
			"ok":      false,
			"title":   a.text(c, msgWrongAnswer),
			"message": a.text(c, msgRetry),
		})
		return
	case errors.Is(err, service.ErrInvalidInput):
		a.renderLogin(c, http.StatusBadRequest, name, a.text(c, msgInvalidInput))
		return
	case err != nil:
		c.Error(err)
		status, key := attendanceStatus(err)
		a.renderLogin(c, status, name, a.text(c, key))
		return
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		c.Error(err)
		a.renderLogin(c, http.StatusInternalServerError, name, a.text(c, msgOperationFailed))
		return
	}

	session := sessions.Default(c)
	session.Set(sessionNameKey, result.Name)
	session.AddFlash(string(encoded), resultFlashKey)
	if err := session.Save(); err != nil {
		logger.Get().Warn(c.Request.Context(), "failed to save session", logger.Error(err))
	}

	c.Redirect(http.StatusSeeOther, "/result")
}

// ShowResult 展示上一次登录的判定结果，没有结果时回到登录页
func (a *API) ShowResult(c *gin.Context) {
	session := sessions.Default(c)
	flashes := session.Flashes(resultFlashKey)
	if err := session.Save(); err != nil {
		logger.Get().Warn(c.Request.Context(), "failed to save session", logger.Error(err))
	}

	var result service.LoginResult
	found := false
	for _, flash := range flashes {
		raw, ok := flash.(string)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			found = true
		}
	}
	if !found {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	a.renderHTML(c, http.StatusOK, "result.html", gin.H{
		"ok":      true,
		"title":   a.text(c, msgLoginOK),
		"message": a.text(c, msgRecorded, result.Name, result.TimeOfDay),
		"streak":  a.text(c, msgStreak, result.Streak),
		"name":    result.Name,
		"granted": grantedViews(result.Granted),
		"heading": a.text(c, msgNewTitles),
	})
}

// ShowToday 渲染今日起床榜
func (a *API) ShowToday(c *gin.Context) {
	today := a.today()
	events, err := a.wakeups.DayBoard(c.Request.Context(), today)
	if err != nil {
		c.Error(err)
		status, key := attendanceStatus(err)
		a.renderHTML(c, status, "today.html", gin.H{
			"title": a.text(c, msgTodayTitle),
			"day":   today,
			"error": a.text(c, key),
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "today.html", gin.H{
		"title":  a.text(c, msgTodayTitle),
		"day":    today,
		"events": wakeupEntries(events),
	})
}

// ShowHistory 渲染最近若干天的起床记录
func (a *API) ShowHistory(c *gin.Context) {
	days, ok := parseHistoryDays(c, a.historyDays)
	if !ok {
		a.renderHTML(c, http.StatusBadRequest, "history.html", gin.H{
			"title": a.text(c, msgHistoryTitle),
			"error": a.text(c, msgDaysInvalid),
		})
		return
	}

	end := a.today()
	start, _ := service.ShiftDay(end, -(days - 1))
	groups, err := a.wakeups.History(c.Request.Context(), end, days)
	if err != nil {
		c.Error(err)
		status, key := attendanceStatus(err)
		a.renderHTML(c, status, "history.html", gin.H{
			"title": a.text(c, msgHistoryTitle),
			"error": a.text(c, key),
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "history.html", gin.H{
		"title": a.text(c, msgHistoryTitle),
		"start": start,
		"end":   end,
		"days":  historyDays(groups),
	})
}

// GetQuiz 返回今日题目，不包含答案
func (a *API) GetQuiz(c *gin.Context) {
	quiz := a.attendance.QuizFor(a.now())
	c.JSON(http.StatusOK, gin.H{
		"day":      a.today(),
		"question": quiz.Question,
		"choices":  quiz.Choices,
	})
}

// CreateWakeup 以 JSON 提交答案，答对后返回判定结果
func (a *API) CreateWakeup(c *gin.Context) {
	var payload wakeupPayload
	if !bindJSON(c, &payload, a.text(c, msgInvalidInput)) {
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		respondError(c, http.StatusBadRequest, a.text(c, msgNameRequired))
		return
	}
	if payload.Choice == nil {
		respondError(c, http.StatusBadRequest, a.text(c, msgChoiceRequired))
		return
	}

	result, err := a.attendance.SubmitAnswer(c.Request.Context(), payload.Name, strconv.Itoa(*payload.Choice), a.now())
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}

	if result.Granted == nil {
		result.Granted = []service.GrantedTitle{}
	}
	c.JSON(http.StatusCreated, result)
}

// GetToday 返回今日起床榜 JSON
func (a *API) GetToday(c *gin.Context) {
	today := a.today()
	events, err := a.wakeups.DayBoard(c.Request.Context(), today)
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": today, "events": wakeupEntries(events)})
}

// GetHistory 返回起床历史 JSON
func (a *API) GetHistory(c *gin.Context) {
	days, ok := parseHistoryDays(c, a.historyDays)
	if !ok {
		respondError(c, http.StatusBadRequest, a.text(c, msgDaysInvalid))
		return
	}

	end := a.today()
	start, _ := service.ShiftDay(end, -(days - 1))
	groups, err := a.wakeups.History(c.Request.Context(), end, days)
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": start, "end": end, "days": historyDays(groups)})
}

func sessionName(c *gin.Context) string {
	if name, ok := sessions.Default(c).Get(sessionNameKey).(string); ok {
		return name
	}
	return ""
}

func rememberName(c *gin.Context, name string) {
	if name == "" {
		return
	}
	session := sessions.Default(c)
	session.Set(sessionNameKey, name)
	if err := session.Save(); err != nil {
		logger.Get().Warn(c.Request.Context(), "failed to save session", logger.Error(err))
	}
}

func wakeupEntries(events []db.WakeupEvent) []wakeupEntry {
	entries := make([]wakeupEntry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, wakeupEntry{Name: ev.Name, TimeOfDay: ev.TimeOfDay})
	}
	return entries
}

func historyDays(groups []service.DayEvents) []historyDay {
	out := make([]historyDay, 0, len(groups))
	for _, group := range groups {
		out = append(out, historyDay{Day: group.Day, Events: wakeupEntries(group.Events)})
	}
	return out
}

func grantedViews(granted []service.GrantedTitle) []grantedTitleView {
	views := make([]grantedTitleView, 0, len(granted))
	for _, g := range granted {
		views = append(views, grantedTitleView{
			User:        g.User,
			Code:        g.Code,
			Name:        g.Name,
			Description: markdownOrText(g.Description),
			Hidden:      g.Hidden,
		})
	}
	return views
}
