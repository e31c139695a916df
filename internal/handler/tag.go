package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/model"
)

type TagHandler struct {
	Tags  TagStore
	Views ArticleReader
}

func NewTagHandler(tags TagStore, articles ArticleReader) *TagHandler {
	return &TagHandler{Tags: tags, Views: articles}
}

type tagRequest struct {
	Name        *string `json:"name"`
	Type        *uint8  `json:"type"`
	Status      *uint8  `json:"status"`
	Description *string `json:"description"`
}

func (r tagRequest) validate(create bool) error {
	if create && r.Name == nil {
		return requireText("name", "")
	}
	if r.Name != nil {
		if err := checkTagName(*r.Name); err != nil {
			return err
		}
	}
	return firstError(
		checkFlag("type", r.Type, 1),
		checkFlag("status", r.Status, 1),
	)
}

func (h *TagHandler) Create(c echo.Context) error {
	var req tagRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(true); err != nil {
		return err
	}
	tag := &model.Tag{Name: *trimmed(req.Name), Description: nullString(req.Description)}
	if req.Type != nil {
		tag.Type = *req.Type
	}
	if req.Status != nil {
		tag.Status = *req.Status
	}
	if err := h.Tags.Create(c.Request().Context(), tag); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTagResponse(tag))
}

func (h *TagHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tag, err := h.Tags.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTagResponse(tag))
}

func (h *TagHandler) List(c echo.Context) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	tags, err := h.Tags.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(tags, newTagResponse))
}

func (h *TagHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req tagRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(false); err != nil {
		return err
	}
	tag, err := h.Tags.Update(c.Request().Context(), id, model.TagPatch{
		Name:        trimmed(req.Name),
		Type:        req.Type,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTagResponse(tag))
}

func (h *TagHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Tags.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Articles handles GET /tags/:id/articles.
func (h *TagHandler) Articles(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := pagination(c)
	if err != nil {
		return err
	}
	views, err := h.Views.ListViewsByTag(c.Request().Context(), id, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newArticlePreviews(views))
}
