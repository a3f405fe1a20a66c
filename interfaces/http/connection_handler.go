package http

import (
	"socialflow/usecase"

	"github.com/gin-gonic/gin"
)

type IConnectionHandler interface {
	List(ctx *gin.Context)
	Disconnect(ctx *gin.Context)
	Begin(ctx *gin.Context)
	Callback(ctx *gin.Context)
}

type ConnectionHandler struct {
	sessions usecase.ISessionManager
}

func NewConnectionHandler(sessions usecase.ISessionManager) IConnectionHandler {
	return &ConnectionHandler{sessions: sessions}
}

// List returns all three platforms with their connection state.
func (h *ConnectionHandler) List(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	s, err := h.sessions.Session(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, s.Registry.List())
}

func (h *ConnectionHandler) Disconnect(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	platform, ok := platformParam(ctx)
	if !ok {
		return
	}
	if err := h.sessions.Disconnect(ctx.Request.Context(), uid, platform); err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, gin.H{"platform": platform, "connected": false})
}

// Begin starts an OAuth handshake and returns the provider URL to redirect to.
func (h *ConnectionHandler) Begin(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	platform, ok := platformParam(ctx)
	if !ok {
		return
	}
	s, err := h.sessions.Session(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	authURL, err := s.Handshake.Begin(ctx.Request.Context(), platform)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, gin.H{"platform": platform, "auth_url": authURL})
}
