package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	workspaceserrors "deskly/internal/workspaces/errors"
	"deskly/pkg/config"
	"deskly/pkg/model"
)

const CollectionName = "Workspaces"

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *model.Workspace) error
	FindByID(ctx context.Context, id string) (*model.Workspace, error)
	FindAllActive(ctx context.Context, limit int, offset int64) ([]*model.Workspace, error)
	CountActive(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, workspace *model.Workspace) (*mongo.UpdateResult, error)
	Deactivate(ctx context.Context, id string) error
}

type mongoWorkspaceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWorkspaceRepository(cfg *config.Config) WorkspaceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkspaceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout bounds the operation unless the context already carries a
// session (inside a transaction) or a tighter deadline.
func (r *mongoWorkspaceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoWorkspaceRepository) Create(ctx context.Context, workspace *model.Workspace) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	workspace.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, workspace)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		workspace.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWorkspaceRepository) FindByID(ctx context.Context, id string) (*model.Workspace, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workspaceserrors.ErrInvalidID, id)
	}

	var workspace model.Workspace
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&workspace)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, workspaceserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	return &workspace, nil
}

func (r *mongoWorkspaceRepository) FindAllActive(ctx context.Context, limit int, offset int64) ([]*model.Workspace, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer cursor.Close(ctx)

	var workspaces []*model.Workspace
	if err := cursor.All(ctx, &workspaces); err != nil {
		return nil, fmt.Errorf("failed to decode workspaces: %w", err)
	}

	return workspaces, nil
}

func (r *mongoWorkspaceRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count workspaces: %w", err)
	}
	return count, nil
}

func (r *mongoWorkspaceRepository) Update(ctx context.Context, id string, workspace *model.Workspace) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workspaceserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"name":           workspace.Name,
		"description":    workspace.Description,
		"capacity":       workspace.Capacity,
		"price_per_hour": workspace.PricePerHour,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, workspaceserrors.ErrNotFound
	}

	return result, nil
}

// Deactivate soft-deletes: it clears the active flag and nothing else.
// Physical deletes would orphan historical bookings.
func (r *mongoWorkspaceRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", workspaceserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate workspace: %w", err)
	}
	if result.MatchedCount == 0 {
		return workspaceserrors.ErrNotFound
	}

	return nil
}
