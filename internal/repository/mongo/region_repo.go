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

const regionCollectionName = "regions"

// mongoRegionRepository implements repository.RegionRepository
type mongoRegionRepository struct {
	collection *mongo.Collection
}

// NewMongoRegionRepository creates a new Region repository backed by MongoDB.
func NewMongoRegionRepository(db *mongo.Database) repository.RegionRepository {
	return &mongoRegionRepository{
		collection: db.Collection(regionCollectionName),
	}
}

// Create inserts a new region.
func (r *mongoRegionRepository) Create(ctx context.Context, region *domain.Region) (primitive.ObjectID, error) {
	if region.Name == "" {
		return primitive.NilObjectID, errors.New("region requires a name")
	}
	region.ID = primitive.NewObjectID()
	region.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, region)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrAlreadyExists
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted region ID")
	}
	return insertedID, nil
}

// GetAll lists regions sorted by name.
func (r *mongoRegionRepository) GetAll(ctx context.Context) ([]domain.Region, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	regions := []domain.Region{}
	if err = cursor.All(ctx, &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// GetByID retrieves a region by its ID.
func (r *mongoRegionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Region, error) {
	var region domain.Region
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&region)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &region, nil
}

// EnsureRegionIndexes makes region names unique.
func EnsureRegionIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
