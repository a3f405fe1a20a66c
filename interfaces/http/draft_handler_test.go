package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"socialflow/domain/dto"
	"socialflow/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeDraft(t *testing.T, res dto.Res) dto.DraftResponse {
	t.Helper()
	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var d dto.DraftResponse
	require.NoError(t, json.Unmarshal(raw, &d))
	return d
}

func TestDraftHandler_ComposeAndSubmit(t *testing.T) {
	f := newFixture()
	f.connect(t, model.PlatformInstagram)

	w, res := f.do(t, http.MethodGet, "/api/draft", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeDraft(t, res).Submittable)

	w, _ = f.do(t, http.MethodPost, "/api/draft/platforms/youtube", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/draft/platforms/instagram", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, res = f.do(t, http.MethodPut, "/api/draft/content", dto.ContentRequest{Content: "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	d := decodeDraft(t, res)
	assert.True(t, d.Submittable)
	require.Len(t, d.Counts, 1)
	assert.Equal(t, 5, d.Counts[0].Count)

	post := &model.Post{ID: "p1", Status: model.PostStatusPublished}
	f.lifecycle.On("Submit", mock.Anything, "user-1", mock.MatchedBy(func(d model.DraftPost) bool {
		return d.Content == "hello" && len(d.TargetPlatforms) == 1
	}), false).Return(post, nil).Once()

	w, res = f.do(t, http.MethodPost, "/api/draft/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "p1", res.Data.(map[string]interface{})["id"])

	_, res = f.do(t, http.MethodGet, "/api/draft", nil)
	assert.Empty(t, decodeDraft(t, res).Content)
	f.lifecycle.AssertExpectations(t)
}

func TestDraftHandler_SubmitInvalid(t *testing.T) {
	f := newFixture()
	f.do(t, http.MethodPut, "/api/draft/content", dto.ContentRequest{Content: strings.Repeat("x", 10)})

	w, res := f.do(t, http.MethodPost, "/api/draft/submit", dto.SubmitRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	raw, _ := json.Marshal(res.Data)
	assert.Contains(t, string(raw), string(model.ViolationNoPlatformSelected))
	f.lifecycle.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftHandler_SubmitDeliveryFailureResetsDraft(t *testing.T) {
	f := newFixture()
	f.connect(t, model.PlatformTikTok)
	f.do(t, http.MethodPost, "/api/draft/platforms/tiktok", nil)
	f.do(t, http.MethodPut, "/api/draft/content", dto.ContentRequest{Content: "hi"})

	msg := "TikTok: boom"
	post := &model.Post{ID: "p2", Status: model.PostStatusDraft, ErrorMessage: &msg}
	f.lifecycle.On("Submit", mock.Anything, "user-1", mock.Anything, true).
		Return(post, fmt.Errorf("%w: %s", model.ErrDeliveryFailed, msg)).Once()

	w, res := f.do(t, http.MethodPost, "/api/draft/submit", dto.SubmitRequest{SaveAsDraft: true})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "p2", res.Data.(map[string]interface{})["id"])

	_, res = f.do(t, http.MethodGet, "/api/draft", nil)
	assert.Empty(t, decodeDraft(t, res).Platforms)
}

func TestDraftHandler_SubmitErrorKeepsDraft(t *testing.T) {
	f := newFixture()
	f.connect(t, model.PlatformTikTok)
	f.do(t, http.MethodPost, "/api/draft/platforms/tiktok", nil)
	f.do(t, http.MethodPut, "/api/draft/content", dto.ContentRequest{Content: "hi"})
	f.lifecycle.On("Submit", mock.Anything, "user-1", mock.Anything, false).
		Return(nil, errors.New("db down")).Once()

	w, _ := f.do(t, http.MethodPost, "/api/draft/submit", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	_, res := f.do(t, http.MethodGet, "/api/draft", nil)
	assert.Equal(t, "hi", decodeDraft(t, res).Content)
}

func TestDraftHandler_Schedule(t *testing.T) {
	f := newFixture()

	w, _ := f.do(t, http.MethodPut, "/api/draft/schedule", dto.ScheduleRequest{Date: "2000-01-01", Time: "10:00"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = f.do(t, http.MethodPut, "/api/draft/schedule", dto.ScheduleRequest{Date: "tomorrow", Time: "10:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	next := time.Now().UTC().Add(48 * time.Hour)
	w, res := f.do(t, http.MethodPut, "/api/draft/schedule", dto.ScheduleRequest{Date: next.Format("2006-01-02"), Time: "10:00"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decodeDraft(t, res).ScheduledAt)
}
