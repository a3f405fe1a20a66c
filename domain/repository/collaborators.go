package repository

import (
	"context"
	"time"

	"socialflow/domain/model"
)

// IOAuthProvider is the external OAuth provider for the supported platforms.
type IOAuthProvider interface {
	// AuthCodeURL returns the authorization redirect target carrying nonce as state.
	AuthCodeURL(platform model.Platform, nonce string) (string, error)
	// Exchange trades an authorization code for a token bundle. Called once per callback.
	Exchange(ctx context.Context, platform model.Platform, code string) (model.TokenBundle, *model.UserInfo, error)
}

// IDelivery publishes a post to one platform.
type IDelivery interface {
	Deliver(ctx context.Context, req model.DeliveryRequest) error
}

// IPostEvents broadcasts post status changes.
type IPostEvents interface {
	Publish(ctx context.Context, event model.PostEvent) error
}

// IDispatchQueue schedules a post id to be handed back for dispatch at a given time.
type IDispatchQueue interface {
	Enqueue(ctx context.Context, postID string, at time.Time) error
}

// INewsletter stores newsletter subscriptions.
type INewsletter interface {
	Create(ctx context.Context, sub *model.NewsletterSubscription) error
}
