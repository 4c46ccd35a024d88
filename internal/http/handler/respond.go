package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecaro09/tasko-sub000/internal/domain"
)

// actorID pulls the authenticated user id set by the JWT middleware.
func actorID(c echo.Context) (string, bool) {
	id, ok := c.Get("user_id").(string)
	return id, ok && id != ""
}

// fail maps a typed domain error to an HTTP response carrying enough
// detail (entity, id, current vs. expected state) for a specific message.
func fail(c echo.Context, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	body := echo.Map{
		"error":  de.Error(),
		"kind":   string(de.Kind),
		"entity": de.Entity,
	}
	if de.ID != "" {
		body["id"] = de.ID
	}
	if de.Current != "" || de.Expected != "" {
		body["current_state"] = de.Current
		body["expected_state"] = de.Expected
	}
	return c.JSON(statusFor(de.Kind), body)
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindNotAuthorized:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindInvalidState, domain.KindInvalidTransition, domain.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
