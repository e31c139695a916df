package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/logging"
	"github.com/iliyamo/letters/internal/model"
	"github.com/iliyamo/letters/internal/queue"
	"github.com/iliyamo/letters/internal/utils"
)

type ArticleHandler struct {
	Articles ArticleStore
	Hasher   PasswordHasher
	Events   EventPublisher
}

func NewArticleHandler(articles ArticleStore, hasher PasswordHasher, events EventPublisher) *ArticleHandler {
	return &ArticleHandler{Articles: articles, Hasher: hasher, Events: events}
}

// articleRequest is used for both create and update. On update every field
// is optional; a present tags array replaces the tag set.
type articleRequest struct {
	Title      *string  `json:"title"`
	Slug       *string  `json:"slug"`
	Cover      *string  `json:"cover"`
	Content    *string  `json:"content"`
	Summary    *string  `json:"summary"`
	Password   *string  `json:"password"`
	Source     *uint8   `json:"source"`
	SourceURL  *string  `json:"source_url"`
	Topping    *uint8   `json:"topping"`
	Status     *uint8   `json:"status"`
	CategoryID *uint64  `json:"category_id"`
	Tags       []string `json:"tags"`
	SeriesID   *uint64  `json:"series_id"`
}

func (r articleRequest) validate(create bool) error {
	if create {
		if r.Title == nil || r.Content == nil {
			return apperr.InvalidInput("title and content are required")
		}
		if r.CategoryID == nil {
			return apperr.InvalidInput("category_id is required")
		}
	} else if r.SeriesID != nil {
		return apperr.InvalidInput("series membership is changed through /series/:id/articles")
	}
	if r.Title != nil {
		if err := requireText("title", *r.Title); err != nil {
			return err
		}
	}
	if r.Content != nil {
		if err := requireText("content", *r.Content); err != nil {
			return err
		}
	}
	if r.CategoryID != nil && *r.CategoryID == 0 {
		return apperr.InvalidInput("invalid category_id")
	}
	if r.SeriesID != nil && *r.SeriesID == 0 {
		return apperr.InvalidInput("invalid series_id")
	}
	if r.Password != nil && *r.Password == "" {
		return apperr.InvalidInput("password must not be empty")
	}
	for _, name := range r.Tags {
		if err := checkTagName(name); err != nil {
			return err
		}
	}
	return firstError(
		checkFlag("status", r.Status, 1),
		checkFlag("topping", r.Topping, 1),
		checkFlag("source", r.Source, 2),
		checkURL("cover", r.Cover),
		checkURL("source_url", r.SourceURL),
	)
}

func derefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func (h *ArticleHandler) hashPassword(c echo.Context, pw *string) (*string, error) {
	if pw == nil {
		return nil, nil
	}
	hash, err := h.Hasher.Hash(c.Request().Context(), *pw)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

// publish sends an article event. Failures are logged and do not affect the
// response.
func (h *ArticleHandler) publish(c echo.Context, typ string, articleID, userID uint64, title string) {
	if h.Events == nil {
		return
	}
	ev := queue.NewArticleEvent(typ, articleID, userID, title)
	if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
		logging.ExtractLogger(c.Request().Context()).Warn().Err(err).
			Str("type", typ).Uint64("article_id", articleID).
			Msg("failed to publish article event")
	}
}

// Create handles POST /articles. The slug defaults to the title and the
// summary to the start of the content's plain text.
func (h *ArticleHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req articleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(true); err != nil {
		return err
	}

	a := &model.Article{
		Title:      strings.TrimSpace(*req.Title),
		Cover:      derefOr(trimmed(req.Cover), ""),
		Content:    *req.Content,
		Source:     derefOr(req.Source, model.SourceOriginal),
		SourceURL:  nullString(trimmed(req.SourceURL)),
		Topping:    derefOr(req.Topping, 0),
		Status:     derefOr(req.Status, model.StatusUnpublished),
		CategoryID: *req.CategoryID,
		UserID:     uid,
	}
	a.Slug = strings.TrimSpace(derefOr(req.Slug, ""))
	if a.Slug == "" {
		a.Slug = a.Title
	}
	a.Summary = strings.TrimSpace(derefOr(req.Summary, ""))
	if a.Summary == "" {
		a.Summary = utils.Summarize(a.Content)
	}
	hash, err := h.hashPassword(c, req.Password)
	if err != nil {
		return err
	}
	a.PasswordHash = nullString(hash)

	ctx := c.Request().Context()
	if err := h.Articles.Create(ctx, a, req.Tags, req.SeriesID); err != nil {
		return err
	}
	view, err := h.Articles.GetView(ctx, a.ID)
	if err != nil {
		return err
	}
	h.publish(c, queue.ArticleCreated, a.ID, uid, a.Title)
	return c.JSON(http.StatusOK, newArticleDetail(view))
}

func (h *ArticleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.Articles.GetView(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newArticleDetail(view))
}

func (h *ArticleHandler) List(c echo.Context) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	views, err := h.Articles.ListViews(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newArticlePreviews(views))
}

// Update handles PUT /articles/:id. Fields absent from the body keep their
// stored value, including the tag set.
func (h *ArticleHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req articleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(false); err != nil {
		return err
	}
	hash, err := h.hashPassword(c, req.Password)
	if err != nil {
		return err
	}

	patch := model.ArticlePatch{
		Title:        trimmed(req.Title),
		Slug:         trimmed(req.Slug),
		Cover:        trimmed(req.Cover),
		Content:      req.Content,
		Summary:      req.Summary,
		PasswordHash: hash,
		Source:       req.Source,
		SourceURL:    trimmed(req.SourceURL),
		Topping:      req.Topping,
		Status:       req.Status,
		CategoryID:   req.CategoryID,
		Tags:         req.Tags,
	}
	ctx := c.Request().Context()
	a, err := h.Articles.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	view, err := h.Articles.GetView(ctx, id)
	if err != nil {
		return err
	}
	if !patch.Empty() {
		h.publish(c, queue.ArticleUpdated, id, uid, a.Title)
	}
	return c.JSON(http.StatusOK, newArticleDetail(view))
}

func (h *ArticleHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Articles.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.publish(c, queue.ArticleDeleted, id, uid, "")
	return c.NoContent(http.StatusNoContent)
}
