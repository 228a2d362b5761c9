package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/middleware"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindUnauthenticated:   http.StatusUnauthorized,
	apperrors.KindExpired:           http.StatusUnauthorized,
	apperrors.KindInvalid:           http.StatusUnauthorized,
	apperrors.KindForbidden:         http.StatusForbidden,
	apperrors.KindNotFound:          http.StatusNotFound,
	apperrors.KindSelfFollow:        http.StatusBadRequest,
	apperrors.KindAlreadyFollowing:  http.StatusConflict,
	apperrors.KindNotFollowing:      http.StatusConflict,
	apperrors.KindAlreadyBookmarked: http.StatusConflict,
	apperrors.KindNotBookmarked:     http.StatusConflict,
	apperrors.KindCannotDeleteAdmin: http.StatusConflict,
	apperrors.KindInvalidRecipient:  http.StatusBadRequest,
	apperrors.KindValidationFailed:  http.StatusBadRequest,
}

func fail(status int, kind apperrors.Kind, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, echo.Map{"success": false, "kind": kind, "message": message})
}

// respondError converts a service error into an HTTP error carrying its kind.
func respondError(err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return fail(http.StatusInternalServerError, apperrors.KindInternal, "Internal server error")
	}
	status, ok := kindStatus[appErr.Kind]
	if !ok {
		return fail(http.StatusInternalServerError, apperrors.KindInternal, "Internal server error")
	}
	return fail(status, appErr.Kind, appErr.Message)
}

// bindAndValidate binds the request body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return fail(http.StatusBadRequest, apperrors.KindValidationFailed, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fail(http.StatusBadRequest, apperrors.KindValidationFailed, verrs[0].Error())
		}
		return fail(http.StatusBadRequest, apperrors.KindValidationFailed, err.Error())
	}
	return nil
}

// currentIdentity returns the authenticated identity or a 401.
func currentIdentity(c echo.Context) (*services.Identity, error) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		return nil, fail(http.StatusUnauthorized, apperrors.KindUnauthenticated, "User not authenticated")
	}
	return id, nil
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, fail(http.StatusBadRequest, apperrors.KindValidationFailed, "Invalid "+name)
	}
	return uint(v), nil
}

func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return services.NormalizePage(page, limit)
}

func pageMeta(p services.Page) echo.Map {
	return echo.Map{
		"currentPage":     p.Page,
		"totalPages":      p.TotalPages,
		"totalItems":      p.Total,
		"itemsPerPage":    p.Limit,
		"hasNextPage":     int64(p.Page) < p.TotalPages,
		"hasPreviousPage": p.Page > 1,
	}
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
