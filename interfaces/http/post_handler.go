package http

import (
	"net/http"
	"strconv"
	"time"

	"socialflow/domain/dto"
	"socialflow/usecase"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type IPostHandler interface {
	List(ctx *gin.Context)
	Get(ctx *gin.Context)
	Schedule(ctx *gin.Context)
	Publish(ctx *gin.Context)
	Stats(ctx *gin.Context)
}

type PostHandler struct {
	lifecycle usecase.IPostLifecycle
	location  *time.Location
}

func NewPostHandler(lifecycle usecase.IPostLifecycle, loc *time.Location) IPostHandler {
	return &PostHandler{lifecycle: lifecycle, location: loc}
}

func (h *PostHandler) List(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	limit := queryInt(ctx, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(ctx, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	posts, err := h.lifecycle.List(ctx.Request.Context(), uid, limit, offset)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, gin.H{"posts": posts, "limit": limit, "offset": offset})
}

func (h *PostHandler) Get(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	post, err := h.lifecycle.Get(ctx.Request.Context(), uid, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, post)
}

// Schedule moves a saved draft to scheduled at the given date and time.
func (h *PostHandler) Schedule(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	var req dto.ScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	at, err := usecase.ParseSchedule(req.Date, req.Time, h.location)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	post, err := h.lifecycle.Schedule(ctx.Request.Context(), uid, ctx.Param("id"), at)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, post)
}

func (h *PostHandler) Publish(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	post, err := h.lifecycle.Publish(ctx.Request.Context(), uid, ctx.Param("id"))
	if err != nil {
		var data interface{}
		if post != nil {
			data = post
		}
		respondError(ctx, err, data)
		return
	}
	respondOK(ctx, post)
}

// Stats returns the dashboard counters of the current user.
func (h *PostHandler) Stats(ctx *gin.Context) {
	uid, ok := userID(ctx)
	if !ok {
		return
	}
	stats, err := h.lifecycle.Stats(ctx.Request.Context(), uid)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, stats)
}

func queryInt(ctx *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
