package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterContent mounts categories, tags, articles and series. Reads are
// public; every mutation goes through guard.
func RegisterContent(g *echo.Group, h Handlers, guard echo.MiddlewareFunc) {
	if c := h.Categories; c != nil {
		g.GET("/categories", c.List)
		g.GET("/categories/:id", c.Get)
		g.GET("/categories/:id/articles", c.Articles)
		g.POST("/categories", c.Create, guard)
		g.PUT("/categories/:id", c.Update, guard)
		g.DELETE("/categories/:id", c.Delete, guard)
	}

	if t := h.Tags; t != nil {
		g.GET("/tags", t.List)
		g.GET("/tags/:id", t.Get)
		g.GET("/tags/:id/articles", t.Articles)
		g.POST("/tags", t.Create, guard)
		g.PUT("/tags/:id", t.Update, guard)
		g.DELETE("/tags/:id", t.Delete, guard)
	}

	if a := h.Articles; a != nil {
		g.GET("/articles", a.List)
		g.GET("/articles/:id", a.Get)
		g.POST("/articles", a.Create, guard)
		g.PUT("/articles/:id", a.Update, guard)
		g.DELETE("/articles/:id", a.Delete, guard)
	}

	if s := h.Series; s != nil {
		g.GET("/series", s.List)
		g.GET("/series/:id", s.Get)
		g.GET("/series/:id/articles", s.Articles)
		g.POST("/series", s.Create, guard)
		g.PUT("/series/:id", s.Update, guard)
		g.DELETE("/series/:id", s.Delete, guard)
		g.POST("/series/:id/articles", s.AddArticle, guard)
		g.DELETE("/series/:id/articles/:article_id", s.RemoveArticle, guard)
	}
}
