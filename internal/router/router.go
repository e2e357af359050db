package router

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"github.com/asakatsu/internal/handler"
	"github.com/asakatsu/internal/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "asakatsu_session"

// Config 描述路由层需要的外部设置
type Config struct {
	SessionSecret string
	TemplateDir   string
	StaticDir     string
	Metrics       *metrics.Manager
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(handler.RequestIDMiddleware())
	r.Use(cfg.Metrics.GinMiddleware())

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.LocaleMiddleware())

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
	})
	if cfg.TemplateDir != "" {
		pattern := filepath.Join(cfg.TemplateDir, "*.html")
		if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
			r.LoadHTMLGlob(pattern)
		}
	}

	// 静态文件服务
	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			r.Static("/static", cfg.StaticDir)
		}
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// 页面路由
	r.GET("/", api.ShowLogin)
	r.POST("/", api.SubmitLogin)
	r.GET("/result", api.ShowResult)
	r.GET("/today", api.ShowToday)
	r.GET("/history", api.ShowHistory)
	r.GET("/titles", api.ShowTitles)
	r.GET("/users/:name/titles", api.ShowUserTitles)

	// JSON API
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/quiz", api.GetQuiz)
		apiGroup.POST("/wakeups", api.CreateWakeup)
		apiGroup.GET("/today", api.GetToday)
		apiGroup.GET("/history", api.GetHistory)
		apiGroup.GET("/titles", api.ListTitles)
		apiGroup.GET("/titles/:code/holders", api.ListTitleHolders)
		apiGroup.GET("/users/:name/titles", api.ListUserTitles)
	}

	return r
}
