package persistence

import (
	"context"

	"socialflow/domain/model"
	"socialflow/domain/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	auditDatabase   = "socialflow"
	auditCollection = "post_audit"
)

// PostAuditRepository appends status transitions to a MongoDB collection.
type PostAuditRepository struct {
	collection *mongo.Collection
}

// NewPostAuditRepository returns a no-op audit log when client is nil.
func NewPostAuditRepository(client *mongo.Client, database string) repository.IPostAudit {
	if client == nil {
		return noopAudit{}
	}
	if database == "" {
		database = auditDatabase
	}
	return &PostAuditRepository{collection: client.Database(database).Collection(auditCollection)}
}

func (r *PostAuditRepository) Record(ctx context.Context, a *model.PostAudit) error {
	_, err := r.collection.InsertOne(ctx, a)
	return err
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, *model.PostAudit) error { return nil }
