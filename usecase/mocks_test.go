package usecase

import (
	"context"
	"time"

	"socialflow/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) AuthCodeURL(platform model.Platform, nonce string) (string, error) {
	args := m.Called(platform, nonce)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, platform model.Platform, code string) (model.TokenBundle, *model.UserInfo, error) {
	args := m.Called(ctx, platform, code)
	var info *model.UserInfo
	if v := args.Get(1); v != nil {
		info = v.(*model.UserInfo)
	}
	return args.Get(0).(model.TokenBundle), info, args.Error(2)
}

type MockDelivery struct {
	mock.Mock
}

func (m *MockDelivery) Deliver(ctx context.Context, req model.DeliveryRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockPostEvents struct {
	mock.Mock
}

func (m *MockPostEvents) Publish(ctx context.Context, event model.PostEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockDispatchQueue struct {
	mock.Mock
}

func (m *MockDispatchQueue) Enqueue(ctx context.Context, postID string, at time.Time) error {
	return m.Called(ctx, postID, at).Error(0)
}

type MockPostAudit struct {
	mock.Mock
}

func (m *MockPostAudit) Record(ctx context.Context, audit *model.PostAudit) error {
	return m.Called(ctx, audit).Error(0)
}

type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Upsert(ctx context.Context, conn *model.StoredConnection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *MockConnectionRepository) ListByUser(ctx context.Context, userID string) ([]*model.StoredConnection, error) {
	args := m.Called(ctx, userID)
	var out []*model.StoredConnection
	if v := args.Get(0); v != nil {
		out = v.([]*model.StoredConnection)
	}
	return out, args.Error(1)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, userID string, platform model.Platform) error {
	return m.Called(ctx, userID, platform).Error(0)
}

type MockNewsletterRepository struct {
	mock.Mock
}

func (m *MockNewsletterRepository) Create(ctx context.Context, sub *model.NewsletterSubscription) error {
	return m.Called(ctx, sub).Error(0)
}

// stubCredentials reports every platform in connected as connected.
type stubCredentials map[model.Platform]bool

func (s stubCredentials) Credentials(_ context.Context, _ string, platform model.Platform) (model.PlatformConnection, error) {
	if !platform.Valid() {
		return model.PlatformConnection{}, model.ErrUnknownPlatform
	}
	if !s[platform] {
		return model.PlatformConnection{Platform: platform}, nil
	}
	return model.PlatformConnection{
		Platform:    platform,
		Connected:   true,
		AccessToken: "token-" + platform.Slug(),
		UserInfo:    &model.UserInfo{ExternalID: "ext-" + platform.Slug()},
	}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
