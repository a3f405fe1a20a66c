package http

import (
	"net/http"

	"socialflow/domain/dto"
	"socialflow/usecase"

	"github.com/gin-gonic/gin"
)

type IMediaHandler interface {
	Signature(ctx *gin.Context)
}

type MediaHandler struct {
	media usecase.IMediaUsecase
}

func NewMediaHandler(media usecase.IMediaUsecase) IMediaHandler {
	return &MediaHandler{media: media}
}

// Signature signs upload parameters for the browser upload widget.
func (h *MediaHandler) Signature(ctx *gin.Context) {
	var req dto.SignatureRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respond(ctx, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}
	res, err := h.media.Sign(req)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respondOK(ctx, res)
}
