package http

import (
	"net/http"

	"socialflow/domain/dto"
	"socialflow/usecase"

	"github.com/gin-gonic/gin"
)

type INewsletterHandler interface {
	Subscribe(ctx *gin.Context)
}

type NewsletterHandler struct {
	newsletter usecase.INewsletterUsecase
}

func NewNewsletterHandler(newsletter usecase.INewsletterUsecase) INewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter}
}

func (h *NewsletterHandler) Subscribe(ctx *gin.Context) {
	var req dto.NewsletterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respond(ctx, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	sub, err := h.newsletter.Subscribe(ctx.Request.Context(), req.Email)
	if err != nil {
		respondError(ctx, err, nil)
		return
	}
	respond(ctx, http.StatusCreated, "Subscribed", sub)
}
