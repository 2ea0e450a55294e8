package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var notFoundErrors = []error{
	domain.ErrSubjectNotFound,
	domain.ErrSessionNotFound,
	domain.ErrExamNotFound,
	domain.ErrSnapshotNotFound,
	domain.ErrTimerNotFound,
	domain.ErrEmptyCycle,
}

var versionConflicts = []error{
	domain.ErrSubjectConflict,
	domain.ErrSessionConflict,
	domain.ErrExamConflict,
	domain.ErrSettingsConflict,
}

var conflictErrors = []error{
	domain.ErrEmailAlreadyExists,
	domain.ErrTimerAlreadyRunning,
	domain.ErrTimerNotRunning,
	domain.ErrTimerNotPaused,
}

var validationErrors = []error{
	domain.ErrInvalidUserID,
	domain.ErrInvalidRange,
	domain.ErrRangeTooLarge,
	domain.ErrVersionMissing,
	domain.ErrInvalidDay,
	domain.ErrSubjectTitleEmpty,
	domain.ErrSubjectTitleTooLong,
	domain.ErrSubjectDescTooLong,
	domain.ErrInvalidColor,
	domain.ErrInvalidPosition,
	domain.ErrSubjectArchived,
	domain.ErrInvalidSession,
	domain.ErrNegativeDuration,
	domain.ErrOccurredAtRequired,
	domain.ErrInvalidQuestions,
	domain.ErrTooManyCorrect,
	domain.ErrCategoryTooLong,
	domain.ErrSessionNotesTooLong,
	domain.ErrExamTitleEmpty,
	domain.ErrExamTitleTooLong,
	domain.ErrExamDateRequired,
	domain.ErrInvalidElapsed,
	domain.ErrExamNotesTooLong,
	domain.ErrExamTooManyRights,
	domain.ErrInvalidRestDays,
	domain.ErrInvalidTimezone,
	domain.ErrSnapshotVersion,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	repository.ErrReferenceMissing,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func errorStatus(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case isAny(err, versionConflicts), isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, validationErrors):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleError writes the response for a service error. Unexpected errors are
// logged and hidden from the client.
func handleError(c *gin.Context, err error) {
	status := errorStatus(err)

	switch status {
	case http.StatusInternalServerError:
		userID, _ := middleware.GetUserID(c)
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(status, errorResponse{Error: "internal server error"})
	case http.StatusConflict:
		resp := errorResponse{Error: err.Error()}
		if isAny(err, versionConflicts) {
			resp.Message = "Data has been modified elsewhere. Please sync."
		}
		c.JSON(status, resp)
	case http.StatusForbidden:
		c.JSON(status, errorResponse{Error: "forbidden"})
	default:
		c.JSON(status, errorResponse{Error: err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// currentUser reads the authenticated user id, answering 401 when missing.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}
