package http

import (
	"errors"
	"net/http"

	"socialflow/domain/dto"
	"socialflow/domain/model"
	"socialflow/infrastructure/logger"
	"socialflow/usecase"

	"github.com/gin-gonic/gin"
)

type IDraftHandler interface {
	Get(ctx *gin.Context)
	SetContent(ctx *gin.Context)
	SelectPlatform(ctx *gin.Context)
	DeselectPlatform(ctx *gin.Context)
	AttachMedia(ctx *gin.Context)
	ClearMedia(ctx *gin.Context)
	SetSchedule(ctx *gin.Context)
	ClearSchedule(ctx *gin.Context)
	Reset(ctx *gin.Context)
	Submit(ctx *gin.Context)
}

type DraftHandler struct {
	sessions  usecase.ISessionManager
	lifecycle usecase.IPostLifecycle
}

func NewDraftHandler(sessions usecase.ISessionManager, lifecycle usecase.IPostLifecycle) IDraftHandler {
	return &DraftHandler{sessions: sessions, lifecycle: lifecycle}
}

func (h *DraftHandler) composer(ctx *gin.Context) (string, *usecase.PostComposer, bool) {
	uid, ok := userID(ctx)
	if !ok {
		return "", nil, false
	}
	s, err := h.sessions.Session(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, nil)
		return "", nil, false
	}
	return uid, s.Composer, true
}

func (h *DraftHandler) Get(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	respondOK(ctx, c.Snapshot())
}

func (h *DraftHandler) SetContent(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	var req dto.ContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	c.SetContent(req.Content)
	respondOK(ctx, c.Snapshot())
}

func (h *DraftHandler) SelectPlatform(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	platform, ok := platformParam(ctx)
	if !ok {
		return
	}
	if err := c.SelectPlatform(platform); err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, c.Snapshot())
}

func (h *DraftHandler) DeselectPlatform(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	platform, ok := platformParam(ctx)
	if !ok {
		return
	}
	c.DeselectPlatform(platform)
	respondOK(ctx, c.Snapshot())
}

// AttachMedia stores the reference returned by the upload widget.
func (h *DraftHandler) AttachMedia(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	var ref model.MediaRef
	if err := ctx.ShouldBindJSON(&ref); err != nil || ref.URL == "" {
		respond(ctx, http.StatusBadRequest, "invalid media reference", nil)
		return
	}
	c.AttachMedia(ref)
	respondOK(ctx, c.Snapshot())
}

func (h *DraftHandler) ClearMedia(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	c.ClearMedia()
	respondOK(ctx, c.Snapshot())
}

func (h *DraftHandler) SetSchedule(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	var req dto.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := c.SetSchedule(req.Date, req.Time); err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, c.Snapshot())
}

func (h *DraftHandler) ClearSchedule(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	c.ClearSchedule()
	respondOK(ctx, c.Snapshot())
}

func (h *DraftHandler) Reset(ctx *gin.Context) {
	_, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	c.Reset()
	respondOK(ctx, c.Snapshot())
}

// Submit hands the draft to the lifecycle. The composer is cleared once a post
// record exists, including when immediate delivery failed.
func (h *DraftHandler) Submit(ctx *gin.Context) {
	uid, c, ok := h.composer(ctx)
	if !ok {
		return
	}
	var req dto.SubmitRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respond(ctx, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}
	draft, err := c.ToDraftPost()
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	post, err := h.lifecycle.Submit(ctx.Request.Context(), uid, draft, req.SaveAsDraft)
	if post != nil {
		c.Reset()
	}
	if err != nil {
		if post != nil && errors.Is(err, model.ErrDeliveryFailed) {
			logger.GetLogger().WithField("user_id", uid).WithField("post_id", post.ID).WithField("error", err).Warn("post kept as draft after failed delivery")
		}
		var data interface{}
		if post != nil {
			data = post
		}
		respondError(ctx, err, data)
		return
	}
	respond(ctx, http.StatusCreated, "Created", post)
}
