package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	visiterrors "homeshow/internal/visits/errors"
	"homeshow/pkg/config"
	mongotx "homeshow/pkg/db/mongo"
	"homeshow/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "VisitRequests"
)

type mongoVisitRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type VisitRepository interface {
	Create(ctx context.Context, request *model.VisitRequest) error
	FindByID(ctx context.Context, id string) (*model.VisitRequest, error)
	Update(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	FindByRequester(ctx context.Context, requesterID string, status model.VisitStatus) ([]*model.VisitRequest, error)
	FindByRecipient(ctx context.Context, recipientID string, status model.VisitStatus) ([]*model.VisitRequest, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoVisitRepository(cfg *config.Config) VisitRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVisitRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping the SessionContext would break transaction
// semantics.
func (r *mongoVisitRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoVisitRepository) Create(ctx context.Context, request *model.VisitRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	request.CreatedAt = now
	request.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create visit request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVisitRepository) FindByID(ctx context.Context, id string) (*model.VisitRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", visiterrors.ErrInvalidID, id)
	}

	var request model.VisitRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, visiterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find visit request: %w", err)
	}

	return &request, nil
}

func (r *mongoVisitRepository) Update(ctx context.Context, id string, request *model.VisitRequest) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", visiterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"scheduled_at": request.ScheduledAt,
			"note":         request.Note,
			"status":       request.Status,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update visit request: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, visiterrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoVisitRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", visiterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete visit request: %w", err)
	}

	if result.DeletedCount == 0 {
		return visiterrors.ErrNotFound
	}

	return nil
}

func (r *mongoVisitRepository) FindByRequester(ctx context.Context, requesterID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	return r.findByActor(ctx, "requester_id", requesterID, status)
}

func (r *mongoVisitRepository) FindByRecipient(ctx context.Context, recipientID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	return r.findByActor(ctx, "recipient_id", recipientID, status)
}

func (r *mongoVisitRepository) findByActor(ctx context.Context, field, actorID string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{field: actorID}
	if status != "" && status != model.StatusFilterAll {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find visit requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.VisitRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode visit requests: %w", err)
	}

	return requests, nil
}

func (r *mongoVisitRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
