package api

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/services"
)

const rateClassPasswordReset = "password_reset"

var (
	errInvalidBody     = fmt.Errorf("%w: request body is not valid JSON", services.ErrValidation)
	errTooManyRequests = fmt.Errorf("%w: request limit reached", services.ErrRateLimited)
	errRouteNotFound   = fmt.Errorf("%w: route not found", services.ErrNotFound)
)

type errorMapping struct {
	target error
	status int
	key    string
}

// errorMappings is searched in order, so specific errors come before the
// kinds they unwrap to.
var errorMappings = []errorMapping{
	{errInvalidBody, fiber.StatusBadRequest, "errors.invalid_body"},
	{services.ErrRequiredFieldsMissing, fiber.StatusBadRequest, "errors.required_fields_missing"},
	{services.ErrPasswordTooShort, fiber.StatusBadRequest, "errors.password_too_short"},
	{services.ErrRoleNotAllowed, fiber.StatusBadRequest, "errors.role_not_allowed"},
	{services.ErrPasswordUnchanged, fiber.StatusBadRequest, "errors.password_unchanged"},
	{services.ErrScheduleLayoutInvalid, fiber.StatusBadRequest, "errors.schedule_layout_invalid"},
	{services.ErrTeacherSlotsMismatch, fiber.StatusBadRequest, "errors.teacher_slots_mismatch"},
	{services.ErrTeacherNotOnRoster, fiber.StatusBadRequest, "errors.teacher_not_on_roster"},
	{services.ErrRosterUnknownTeachers, fiber.StatusBadRequest, "errors.roster_unknown_teachers"},
	{services.ErrContentTooLong, fiber.StatusBadRequest, "errors.content_too_long"},
	{services.ErrOwnerRequired, fiber.StatusBadRequest, "errors.owner_required"},
	{services.ErrEmailInvalid, fiber.StatusBadRequest, "errors.email_invalid"},
	{services.ErrValidation, fiber.StatusBadRequest, "errors.validation"},

	{errMissingToken, fiber.StatusUnauthorized, "errors.missing_token"},
	{services.ErrInvalidPassword, fiber.StatusUnauthorized, "errors.invalid_password"},
	{services.ErrSessionRejected, fiber.StatusUnauthorized, "errors.session_rejected"},
	{services.ErrAccountNotActive, fiber.StatusUnauthorized, "errors.account_not_active"},
	{services.ErrUnauthenticated, fiber.StatusUnauthorized, "errors.unauthenticated"},

	{services.ErrForbidden, fiber.StatusForbidden, "errors.forbidden"},

	{errRouteNotFound, fiber.StatusNotFound, "errors.route_not_found"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "errors.user_not_found"},
	{services.ErrScheduleNotFound, fiber.StatusNotFound, "errors.schedule_not_found"},
	{services.ErrPostNotFound, fiber.StatusNotFound, "errors.post_not_found"},
	{services.ErrCommentNotFound, fiber.StatusNotFound, "errors.comment_not_found"},
	{services.ErrNotFound, fiber.StatusNotFound, "errors.not_found"},

	{services.ErrUserIDTaken, fiber.StatusConflict, "errors.user_id_taken"},
	{services.ErrSheetNameTaken, fiber.StatusConflict, "errors.sheet_name_taken"},
	{services.ErrTitleTaken, fiber.StatusConflict, "errors.title_taken"},
	{services.ErrConflict, fiber.StatusConflict, "errors.conflict"},

	{errTooManyRequests, fiber.StatusTooManyRequests, "errors.too_many_requests"},

	{services.ErrResetUnavailable, fiber.StatusServiceUnavailable, "errors.reset_unavailable"},
}

var rateLimitedKeys = map[string]string{
	services.RateClassPost:    "errors.rate_limited.post",
	services.RateClassComment: "errors.rate_limited.comment",
	rateClassPasswordReset:    "errors.reset_attempts",
}

// respondError writes the JSON error body for err. Anything not in the
// mapping is logged and answered with a generic 500.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	var denied *services.AccessDeniedError
	if errors.As(err, &denied) {
		handler.metrics.countAccessDenied(denied.Reason)
		key := "errors.forbidden." + denied.Reason
		if !handler.i18n.Has(key) {
			key = "errors.forbidden"
		}
		return handler.writeError(c, fiber.StatusForbidden, handler.translate(c, key))
	}

	var limited *services.RateLimitedError
	if errors.As(err, &limited) {
		handler.metrics.countRateGateRejection(limited.Class)
		seconds := retryAfterSeconds(limited.RetryAfter)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))

		key, ok := rateLimitedKeys[limited.Class]
		if !ok {
			key = "errors.rate_limited"
		}
		return handler.writeError(c, fiber.StatusTooManyRequests, handler.translate(c, key, seconds))
	}

	for _, mapping := range errorMappings {
		if errors.Is(err, mapping.target) {
			return handler.writeError(c, mapping.status, handler.translate(c, mapping.key))
		}
	}

	key := "errors.internal"
	if errors.Is(err, services.ErrResetMailFailed) {
		key = "errors.reset_mail_failed"
	}
	handler.logger.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return handler.writeError(c, fiber.StatusInternalServerError, handler.translate(c, key))
}

// ErrorHandler answers errors that escape handlers, including recovered
// panics, in the same JSON shape.
func (handler *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return handler.respondError(c, errRouteNotFound)
		case fiber.StatusTooManyRequests:
			return handler.respondError(c, errTooManyRequests)
		}
		if fiberErr.Code < fiber.StatusInternalServerError {
			return handler.writeError(c, fiberErr.Code, fiberErr.Message)
		}
	}
	return handler.respondError(c, err)
}

func (handler *Handler) writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

func retryAfterSeconds(wait time.Duration) int {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
