package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/model"
)

type CategoryHandler struct {
	Categories CategoryStore
	Views      ArticleReader
}

func NewCategoryHandler(categories CategoryStore, articles ArticleReader) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Views: articles}
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *uint8  `json:"status"`
}

func (r categoryRequest) validate(create bool) error {
	if create && r.Name == nil {
		return requireText("name", "")
	}
	if r.Name != nil {
		if err := requireText("name", *r.Name); err != nil {
			return err
		}
	}
	return checkFlag("status", r.Status, 1)
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(true); err != nil {
		return err
	}
	cat := &model.Category{Name: *trimmed(req.Name), Description: nullString(req.Description)}
	if req.Status != nil {
		cat.Status = *req.Status
	}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCategoryResponse(cat))
}

func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.Categories.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCategoryResponse(cat))
}

func (h *CategoryHandler) List(c echo.Context) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	cats, err := h.Categories.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(cats, newCategoryResponse))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(false); err != nil {
		return err
	}
	cat, err := h.Categories.Update(c.Request().Context(), id, model.CategoryPatch{
		Name:        trimmed(req.Name),
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCategoryResponse(cat))
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Articles handles GET /categories/:id/articles.
func (h *CategoryHandler) Articles(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := pagination(c)
	if err != nil {
		return err
	}
	views, err := h.Views.ListViewsByCategory(c.Request().Context(), id, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newArticlePreviews(views))
}
