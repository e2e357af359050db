package handler

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/asakatsu/internal/service"
	"github.com/gin-gonic/gin"
)

type catalogView struct {
	Code        string
	Name        string
	Description template.HTML
	Hidden      bool
	Holders     int64
	HolderNames []string
}

type userTitleView struct {
	Code        string
	Name        string
	Description template.HTML
	Hidden      bool
	AcquiredDay string
}

// ShowTitles 渲染称号目录及持有者
func (a *API) ShowTitles(c *gin.Context) {
	ctx := c.Request.Context()
	catalog, err := a.titleReads.VisibleCatalog(ctx)
	if err != nil {
		a.renderTitlesError(c, err)
		return
	}

	views := make([]catalogView, 0, len(catalog))
	for _, entry := range catalog {
		view := catalogView{
			Code:        entry.Code,
			Name:        entry.Name,
			Description: markdownOrText(entry.Description),
			Hidden:      entry.Hidden,
			Holders:     entry.Holders,
		}
		if entry.Holders > 0 {
			holders, err := a.titleReads.Holders(ctx, entry.Code)
			if err != nil {
				a.renderTitlesError(c, err)
				return
			}
			for _, holder := range holders {
				view.HolderNames = append(view.HolderNames, holder.UserName)
			}
		}
		views = append(views, view)
	}

	a.renderHTML(c, http.StatusOK, "titles.html", gin.H{
		"title":  a.text(c, msgTitlesTitle),
		"titles": views,
	})
}

// renderTitlesError 以错误对应的状态码渲染称号目录页
func (a *API) renderTitlesError(c *gin.Context, err error) {
	status, key := attendanceStatus(err)
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	a.renderHTML(c, status, "titles.html", gin.H{
		"title": a.text(c, msgTitlesTitle),
		"error": a.text(c, key),
	})
}

// ShowUserTitles 渲染某个用户的称号
func (a *API) ShowUserTitles(c *gin.Context) {
	name, err := service.NormalizeName(c.Param("name"))
	var titles []service.UserTitle
	if err == nil {
		titles, err = a.titleReads.TitlesForUser(c.Request.Context(), name)
	} else {
		name = strings.TrimSpace(c.Param("name"))
	}
	if err != nil {
		status, key := attendanceStatus(err)
		if status >= http.StatusInternalServerError {
			c.Error(err)
		}
		a.renderHTML(c, status, "user_titles.html", gin.H{
			"title": a.text(c, msgUserTitlesTitle, name),
			"name":  name,
			"error": a.text(c, key),
		})
		return
	}

	views := make([]userTitleView, 0, len(titles))
	for _, title := range titles {
		views = append(views, userTitleView{
			Code:        title.Code,
			Name:        title.Name,
			Description: markdownOrText(title.Description),
			Hidden:      title.Hidden,
			AcquiredDay: title.AcquiredDay,
		})
	}

	a.renderHTML(c, http.StatusOK, "user_titles.html", gin.H{
		"title":  a.text(c, msgUserTitlesTitle, name),
		"name":   name,
		"titles": views,
	})
}

// ListTitles 返回可见称号目录 JSON
func (a *API) ListTitles(c *gin.Context) {
	catalog, err := a.titleReads.VisibleCatalog(c.Request.Context())
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}
	if catalog == nil {
		catalog = []service.CatalogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"titles": catalog})
}

// ListTitleHolders 返回称号持有者 JSON。隐藏且无人持有的称号视为不存在。
func (a *API) ListTitleHolders(c *gin.Context) {
	ctx := c.Request.Context()
	code := strings.TrimSpace(c.Param("code"))

	def, err := a.titleReads.Definition(ctx, code)
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}
	holders, err := a.titleReads.Holders(ctx, code)
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}
	if def.Hidden && len(holders) == 0 {
		a.handleAttendanceError(c, service.ErrTitleNotFound)
		return
	}
	if holders == nil {
		holders = []service.TitleHolder{}
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    def.Code,
		"name":    def.Name,
		"holders": holders,
	})
}

// ListUserTitles 返回用户称号 JSON
func (a *API) ListUserTitles(c *gin.Context) {
	name, err := service.NormalizeName(c.Param("name"))
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}
	titles, err := a.titleReads.TitlesForUser(c.Request.Context(), name)
	if err != nil {
		a.handleAttendanceError(c, err)
		return
	}
	if titles == nil {
		titles = []service.UserTitle{}
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "titles": titles})
}
