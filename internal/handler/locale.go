package handler

import (
	"net/http"
	"net/url"

	"github.com/asakatsu/internal/locale"
	"github.com/gin-gonic/gin"
)

const (
	localeContextKey     = "__request_locale"
	languageCookieName   = "asa_lang"
	languageCookieMaxAge = 365 * 24 * 60 * 60
)

// languageSource 记录语言偏好来自哪里
type languageSource int

const (
	fromDefault languageSource = iota
	fromHeader
	fromCookie
	fromQuery
)

// languageLink 是页脚语言切换中的一项
type languageLink struct {
	Label  string
	URL    string
	Active bool
}

var languageLabels = []struct{ code, label string }{
	{locale.LanguageJapanese, "日本語"},
	{locale.LanguageEnglish, "English"},
}

// LocaleMiddleware 解析请求语言并设置 Content-Language 与 Vary
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := a.requestLocale(c)
		c.Header("Content-Language", pref.HTMLLang)
		c.Writer.Header().Add("Vary", "Accept-Language")
		c.Writer.Header().Add("Vary", "Cookie")
		c.Next()
	}
}

func (a *API) requestLocale(c *gin.Context) locale.Preference {
	if cached, ok := c.Get(localeContextKey); ok {
		if pref, ok := cached.(locale.Preference); ok {
			return pref
		}
	}

	language, source := resolveLanguage(c)
	pref := locale.PreferenceForLanguage(language)
	if source == fromQuery {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(languageCookieName, pref.Language, languageCookieMaxAge, "/", "", c.Request.TLS != nil, true)
	}
	c.Set(localeContextKey, pref)
	return pref
}

// resolveLanguage 依次查看 ?lang=、cookie 与 Accept-Language，默认日语
func resolveLanguage(c *gin.Context) (string, languageSource) {
	if lang := locale.NormalizeLanguage(c.Query("lang")); lang != "" {
		return lang, fromQuery
	}
	if raw, err := c.Cookie(languageCookieName); err == nil {
		if lang := locale.NormalizeLanguage(raw); lang != "" {
			return lang, fromCookie
		}
	}
	if lang := locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")); lang != "" {
		return lang, fromHeader
	}
	return locale.LanguageJapanese, fromDefault
}

// buildLanguageSwitch 在当前路径与查询参数上替换 lang
func buildLanguageSwitch(c *gin.Context, current string) []languageLink {
	values := url.Values{}
	path := "/"
	if c.Request != nil && c.Request.URL != nil {
		values = c.Request.URL.Query()
		path = c.Request.URL.Path
	}

	links := make([]languageLink, 0, len(languageLabels))
	for _, l := range languageLabels {
		values.Set("lang", l.code)
		links = append(links, languageLink{
			Label:  l.label,
			URL:    path + "?" + values.Encode(),
			Active: l.code == current,
		})
	}
	return links
}
