package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
)

type SeriesHandler struct {
	Series SeriesStore
	Views  ArticleReader
}

func NewSeriesHandler(series SeriesStore, articles ArticleReader) *SeriesHandler {
	return &SeriesHandler{Series: series, Views: articles}
}

type seriesRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Cover       *string    `json:"cover"`
	Status      *uint8     `json:"status"`
	Nums        *uint32    `json:"nums"`
	Type        *uint8     `json:"type"`
	PublishedAt *time.Time `json:"published_at"`
}

func (r seriesRequest) validate(create bool) error {
	if create && r.Name == nil {
		return requireText("name", "")
	}
	if r.Name != nil {
		if err := requireText("name", *r.Name); err != nil {
			return err
		}
	}
	return firstError(
		checkFlag("status", r.Status, 1),
		checkFlag("type", r.Type, 2),
		checkURL("cover", r.Cover),
	)
}

type seriesArticleRequest struct {
	ArticleID uint64 `json:"article_id"`
}

// Create handles POST /series. The author is the authenticated user.
func (h *SeriesHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req seriesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(true); err != nil {
		return err
	}
	s := &model.Series{
		Name:        *trimmed(req.Name),
		Description: nullString(req.Description),
		Cover:       derefOr(trimmed(req.Cover), ""),
		Status:      derefOr(req.Status, model.SeriesSerialising),
		Nums:        derefOr(req.Nums, 0),
		Type:        derefOr(req.Type, model.SeriesFree),
		PublishedAt: derefOr(req.PublishedAt, time.Time{}),
		UserID:      uid,
	}
	if err := h.Series.Create(c.Request().Context(), s); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSeriesResponse(s))
}

func (h *SeriesHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s, err := h.Series.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSeriesResponse(s))
}

func (h *SeriesHandler) List(c echo.Context) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	list, err := h.Series.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(list, newSeriesResponse))
}

func (h *SeriesHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req seriesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(false); err != nil {
		return err
	}
	s, err := h.Series.Update(c.Request().Context(), id, model.SeriesPatch{
		Name:        trimmed(req.Name),
		Description: req.Description,
		Cover:       trimmed(req.Cover),
		Status:      req.Status,
		Nums:        req.Nums,
		Type:        req.Type,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSeriesResponse(s))
}

func (h *SeriesHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Series.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Articles handles GET /series/:id/articles.
func (h *SeriesHandler) Articles(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := pagination(c)
	if err != nil {
		return err
	}
	views, err := h.Views.ListViewsBySeries(c.Request().Context(), id, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newArticlePreviews(views))
}

// AddArticle handles POST /series/:id/articles with body {"article_id": n}.
func (h *SeriesHandler) AddArticle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req seriesArticleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ArticleID == 0 {
		return apperr.InvalidInput("article_id is required")
	}
	if err := h.Series.AddArticle(c.Request().Context(), id, req.ArticleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveArticle handles DELETE /series/:id/articles/:article_id.
func (h *SeriesHandler) RemoveArticle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	articleID, err := pathID(c, "article_id")
	if err != nil {
		return err
	}
	if err := h.Series.RemoveArticle(c.Request().Context(), id, articleID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
