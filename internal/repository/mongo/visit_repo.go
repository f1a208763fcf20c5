package mongo

import (
	"context"
	"errors"
	"time"

	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const visitCollectionName = "visits"

// mongoVisitRepository implements repository.VisitRepository
type mongoVisitRepository struct {
	collection *mongo.Collection
}

// NewMongoVisitRepository creates a new Visit repository backed by MongoDB.
func NewMongoVisitRepository(db *mongo.Database) repository.VisitRepository {
	return &mongoVisitRepository{
		collection: db.Collection(visitCollectionName),
	}
}

// Create records a visit.
func (r *mongoVisitRepository) Create(ctx context.Context, visit *domain.Visit) (primitive.ObjectID, error) {
	if visit.RepID == primitive.NilObjectID || visit.VisitedAt.IsZero() {
		return primitive.NilObjectID, errors.New("visit requires repId and visitedAt")
	}
	visit.ID = primitive.NewObjectID()
	visit.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, visit)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted visit ID")
	}
	return insertedID, nil
}

// GetByRepID retrieves a representative's visits, newest first.
func (r *mongoVisitRepository) GetByRepID(ctx context.Context, repID primitive.ObjectID, since time.Time) ([]domain.Visit, error) {
	filter := bson.M{"repId": repID}
	if !since.IsZero() {
		filter["visitedAt"] = bson.M{"$gte": since}
	}
	return r.find(ctx, filter)
}

// GetAll retrieves visits of every representative, newest first.
func (r *mongoVisitRepository) GetAll(ctx context.Context, since time.Time) ([]domain.Visit, error) {
	filter := bson.M{}
	if !since.IsZero() {
		filter["visitedAt"] = bson.M{"$gte": since}
	}
	return r.find(ctx, filter)
}

func (r *mongoVisitRepository) find(ctx context.Context, filter bson.M) ([]domain.Visit, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "visitedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	visits := []domain.Visit{}
	if err = cursor.All(ctx, &visits); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return visits, nil
}

// EnsureVisitIndexes creates necessary indexes for the visits collection.
func EnsureVisitIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// A rep's history sorted by date
			Keys:    bson.D{{Key: "repId", Value: 1}, {Key: "visitedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "visitedAt", Value: -1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
