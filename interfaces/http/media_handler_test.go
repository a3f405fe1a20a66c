package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialflow/domain/dto"
	"socialflow/infrastructure/persistence"
	"socialflow/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaHandler_Signature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/signature", NewMediaHandler(usecase.NewMediaUsecase(usecase.CloudinaryCredentials{
		CloudName: "demo", APIKey: "key", APISecret: "secret",
	})).Signature)
	r.POST("/unconfigured", NewMediaHandler(usecase.NewMediaUsecase(usecase.CloudinaryCredentials{})).Signature)

	body, _ := json.Marshal(dto.SignatureRequest{Folder: "posts"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/signature", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Data dto.SignatureResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Data.Signature, 40)
	assert.Equal(t, "demo", res.Data.CloudName)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/unconfigured", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewsletterHandler_Subscribe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/newsletter", NewNewsletterHandler(usecase.NewNewsletterUsecase(persistence.NewMemoryNewsletterRepository())).Subscribe)

	send := func(body string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/newsletter", strings.NewReader(body)))
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, send(`{"email":"a@example.com"}`))
	assert.Equal(t, http.StatusConflict, send(`{"email":"A@example.com"}`))
	assert.Equal(t, http.StatusBadRequest, send(`{"email":"nope"}`))
	assert.Equal(t, http.StatusBadRequest, send(`{`))
}
