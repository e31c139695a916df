package handler

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/middleware"
	"github.com/iliyamo/letters/internal/repository"
	"github.com/iliyamo/letters/internal/utils"
)

// getUserID returns the subject stored by the auth guard.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.ContextKeyUserID).(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, apperr.InvalidToken(nil)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput("invalid %s", name)
	}
	return id, nil
}

// bind decodes the JSON body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.New(apperr.KindInvalidInput, err, "invalid request body")
	}
	return nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidInput("invalid %s", name)
	}
	return n, nil
}

// pagination reads page, per_page, order_by and order_direction.
func pagination(c echo.Context) (repository.Pagination, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return repository.Pagination{}, err
	}
	perPage, err := queryInt(c, "per_page", repository.DefaultPerPage)
	if err != nil {
		return repository.Pagination{}, err
	}
	return repository.Pagination{
		Page:      page,
		PerPage:   perPage,
		OrderBy:   c.QueryParam("order_by"),
		Direction: repository.ParseDirection(c.QueryParam("order_direction")),
	}, nil
}

// validation helpers; each returns an InvalidInput error naming the field.

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.InvalidInput("%s must not be empty", field)
	}
	return nil
}

func checkFlag(field string, v *uint8, hi uint8) error {
	if v != nil && *v > hi {
		return apperr.InvalidInput("%s must be between 0 and %d", field, hi)
	}
	return nil
}

// checkURL accepts nil or an empty value; anything else must be an absolute
// URL.
func checkURL(field string, v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	if !utils.IsURL(*v) {
		return apperr.InvalidInput("%s must be a URL", field)
	}
	return nil
}

// checkTagName rejects names the read model could not split back apart.
func checkTagName(name string) error {
	if err := requireText("tag name", name); err != nil {
		return err
	}
	if strings.ContainsAny(strings.TrimSpace(name), " \t\r\n") {
		return apperr.InvalidInput("tag name must not contain whitespace")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
