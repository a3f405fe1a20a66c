package http

import (
	"net/http"

	"socialflow/domain/dto"
	"socialflow/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// Callback completes a handshake with the code and state the provider redirected
// back with. The frontend relays them together with the user's bearer token.
func (h *ConnectionHandler) Callback(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	platform, ok := platformParam(ctx)
	if !ok {
		return
	}
	var req dto.CallbackRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	s, err := h.sessions.Session(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	if req.Error != "" {
		if err := s.Handshake.Cancel(ctx.Request.Context(), platform); err != nil {
			respondError(ctx, err, nil)
			return
		}
		logger.GetLogger().WithField("user_id", uid).WithField("platform", platform).WithField("reason", req.Error).Info("authorization denied at provider")
		respond(ctx, http.StatusBadRequest, "authorization denied: "+req.Error, nil)
		return
	}
	conn, err := s.Handshake.Complete(ctx.Request.Context(), platform, req.State, req.Code)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, conn)
}
