package http

import (
	"errors"
	"net/http"

	"socialflow/domain/dto"
	"socialflow/domain/model"
	"socialflow/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{model.ErrUnknownPlatform, http.StatusBadRequest},
	{model.ErrInvalidSchedule, http.StatusBadRequest},
	{model.ErrInvalidEmail, http.StatusBadRequest},
	{model.ErrNonceMismatch, http.StatusForbidden},
	{model.ErrNoPendingHandshake, http.StatusNotFound},
	{model.ErrPostNotFound, http.StatusNotFound},
	{model.ErrPlatformNotConnected, http.StatusConflict},
	{model.ErrHandshakeAlreadyInFlight, http.StatusConflict},
	{model.ErrInvalidTransition, http.StatusConflict},
	{model.ErrAlreadySubscribed, http.StatusConflict},
	{model.ErrScheduleInPast, http.StatusUnprocessableEntity},
	{model.ErrInvalidDraft, http.StatusUnprocessableEntity},
	{model.ErrTokenExchangeFailed, http.StatusBadGateway},
	{model.ErrDeliveryFailed, http.StatusBadGateway},
	{model.ErrProviderNotConfigured, http.StatusServiceUnavailable},
	{model.ErrMediaNotConfigured, http.StatusInternalServerError},
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func respond(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, dto.Res{
		ResponseCode:    http.StatusText(status),
		ResponseMessage: message,
		Data:            data,
	})
}

func respondOK(ctx *gin.Context, data interface{}) {
	respond(ctx, http.StatusOK, "Success", data)
}

// respondError writes err with its mapped status. data is attached when non-nil,
// e.g. the violations of an invalid draft.
func respondError(ctx *gin.Context, err error, data interface{}) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.GetLogger().WithField("path", ctx.FullPath()).WithField("error", err).Error("request failed")
	}
	var invalid *model.InvalidDraftError
	if data == nil && errors.As(err, &invalid) {
		data = gin.H{"violations": invalid.Violations}
	}
	respond(ctx, status, err.Error(), data)
}

func userID(ctx *gin.Context) (string, bool) {
	id := ctx.GetString("user_id")
	if id == "" {
		respond(ctx, http.StatusUnauthorized, "Unauthorized", nil)
		return "", false
	}
	return id, true
}

func platformParam(ctx *gin.Context) (model.Platform, bool) {
	p, err := model.ParsePlatform(ctx.Param("platform"))
	if err != nil {
		respondError(ctx, err, nil)
		return "", false
	}
	return p, true
}
