package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "deskly/internal/bookings/errors"
	"deskly/pkg/config"
	"deskly/pkg/model"
)

const LockCollectionName = "Workspace_locks"

// WorkspaceLockRepository backs the per-workspace advisory lock. The lock
// is a document keyed by workspace; a duplicate-key error on insert means
// another request holds it. A TTL index on expires_at reaps locks left
// behind by crashed holders.
type WorkspaceLockRepository interface {
	Create(ctx context.Context, workspaceID string) error
	Delete(ctx context.Context, workspaceID string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoWorkspaceLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWorkspaceLockRepository(cfg *config.Config) WorkspaceLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkspaceLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func lockID(workspaceID string) string {
	return "workspace_lock_" + workspaceID
}

func (r *mongoWorkspaceLockRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoWorkspaceLockRepository) Create(ctx context.Context, workspaceID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.WorkspaceLock{
		ID:        lockID(workspaceID),
		ExpiresAt: now.Add(r.cfg.WorkspaceLockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire workspace lock: %w", err)
	}

	return nil
}

func (r *mongoWorkspaceLockRepository) Delete(ctx context.Context, workspaceID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID(workspaceID)})
	if err != nil {
		return fmt.Errorf("failed to release workspace lock: %w", err)
	}

	return nil
}

func (r *mongoWorkspaceLockRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to ensure workspace lock TTL index: %w", err)
	}

	return nil
}
