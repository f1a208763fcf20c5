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

const weeklyPlanCollectionName = "weekly_plans"

// dayDoc is the stored form of one planned day.
type dayDoc struct {
	RegionID  primitive.ObjectID   `bson:"regionId"`
	ClientIDs []primitive.ObjectID `bson:"clientIds"`
}

// planDoc is the stored form of a weekly plan. Days are keyed by lowercase
// weekday name; a missing key is an unplanned day.
type planDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	RepID       primitive.ObjectID  `bson:"repId"`
	Days        map[string]dayDoc   `bson:"days"`
	Status      domain.PlanStatus   `bson:"status"`
	WeekStart   time.Time           `bson:"weekStart"`
	Version     int64               `bson:"version"`
	ArchiveKey  string              `bson:"archiveKey,omitempty"`
	SubmittedAt *time.Time          `bson:"submittedAt,omitempty"`
	ReviewedAt  *time.Time          `bson:"reviewedAt,omitempty"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewedBy,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func toPlanDoc(p *domain.WeeklyPlan) planDoc {
	days := make(map[string]dayDoc, len(p.Days))
	for d, a := range p.Days {
		if a == nil || !domain.ValidWeekday(d) {
			continue
		}
		ids := make([]primitive.ObjectID, len(a.ClientIDs))
		copy(ids, a.ClientIDs)
		days[domain.WeekdayKey(d)] = dayDoc{RegionID: a.RegionID, ClientIDs: ids}
	}
	return planDoc{
		ID:          p.ID,
		RepID:       p.RepID,
		Days:        days,
		Status:      p.Status,
		WeekStart:   p.WeekStart,
		Version:     p.Version,
		ArchiveKey:  p.ArchiveKey,
		SubmittedAt: p.SubmittedAt,
		ReviewedAt:  p.ReviewedAt,
		ReviewedBy:  p.ReviewedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// fromPlanDoc drops keys that are not weekday names.
func fromPlanDoc(doc planDoc) *domain.WeeklyPlan {
	days := make(map[time.Weekday]*domain.DayAssignment, len(doc.Days))
	for key, dd := range doc.Days {
		d, ok := domain.ParseWeekday(key)
		if !ok {
			continue
		}
		ids := make([]primitive.ObjectID, len(dd.ClientIDs))
		copy(ids, dd.ClientIDs)
		days[d] = &domain.DayAssignment{RegionID: dd.RegionID, ClientIDs: ids}
	}
	return &domain.WeeklyPlan{
		ID:          doc.ID,
		RepID:       doc.RepID,
		Days:        days,
		Status:      doc.Status,
		WeekStart:   doc.WeekStart,
		Version:     doc.Version,
		ArchiveKey:  doc.ArchiveKey,
		SubmittedAt: doc.SubmittedAt,
		ReviewedAt:  doc.ReviewedAt,
		ReviewedBy:  doc.ReviewedBy,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

// mongoWeeklyPlanRepository implements repository.WeeklyPlanRepository
type mongoWeeklyPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoWeeklyPlanRepository creates a new WeeklyPlan repository.
// EnsureWeeklyPlanIndexes must have run: Upsert relies on the unique repId index.
func NewMongoWeeklyPlanRepository(db *mongo.Database) repository.WeeklyPlanRepository {
	return &mongoWeeklyPlanRepository{
		collection: db.Collection(weeklyPlanCollectionName),
	}
}

// GetByRepID retrieves the representative's plan.
func (r *mongoWeeklyPlanRepository) GetByRepID(ctx context.Context, repID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	var doc planDoc
	err := r.collection.FindOne(ctx, bson.M{"repId": repID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return fromPlanDoc(doc), nil
}

// submissionDoc is the document Upsert writes. A stored submission is always
// pending, whatever status plan carries.
func submissionDoc(plan *domain.WeeklyPlan, expectedVersion int64, now time.Time) planDoc {
	doc := toPlanDoc(plan)
	doc.Status = domain.PlanPending
	doc.Version = expectedVersion + 1
	doc.UpdatedAt = now
	return doc
}

// submissionUpdate replaces everything but the identity and creation time.
func submissionUpdate(doc planDoc) bson.M {
	return bson.M{
		"$set": bson.M{
			"days":        doc.Days,
			"status":      doc.Status,
			"weekStart":   doc.WeekStart,
			"version":     doc.Version,
			"archiveKey":  doc.ArchiveKey,
			"submittedAt": doc.SubmittedAt,
			"reviewedAt":  doc.ReviewedAt,
			"reviewedBy":  doc.ReviewedBy,
			"updatedAt":   doc.UpdatedAt,
		},
	}
}

// Upsert inserts the first plan for a rep or replaces the stored one, in
// status pending.
func (r *mongoWeeklyPlanRepository) Upsert(ctx context.Context, plan *domain.WeeklyPlan, expectedVersion int64) (*domain.WeeklyPlan, error) {
	if plan.RepID == primitive.NilObjectID {
		return nil, errors.New("weekly plan requires repId")
	}
	now := time.Now().UTC()
	doc := submissionDoc(plan, expectedVersion, now)

	if expectedVersion == 0 {
		doc.ID = primitive.NewObjectID()
		doc.CreatedAt = now
		if _, err := r.collection.InsertOne(ctx, doc); err != nil {
			// Someone else stored the rep's first plan in the meantime
			if mongo.IsDuplicateKeyError(err) {
				return nil, repository.ErrConflict
			}
			return nil, err
		}
		return fromPlanDoc(doc), nil
	}

	filter := bson.M{"repId": plan.RepID, "version": expectedVersion}
	return r.findOneAndUpdate(ctx, plan.RepID, filter, submissionUpdate(doc))
}

// SetStatus moves the stored plan to status, stamping the reviewer when given.
func (r *mongoWeeklyPlanRepository) SetStatus(ctx context.Context, repID primitive.ObjectID, status domain.PlanStatus, reviewer *primitive.ObjectID, expectedVersion int64) (*domain.WeeklyPlan, error) {
	if !status.Valid() {
		return nil, errors.New("invalid plan status")
	}
	now := time.Now().UTC()
	set := bson.M{
		"status":    status,
		"version":   expectedVersion + 1,
		"updatedAt": now,
	}
	if reviewer != nil {
		set["reviewedBy"] = *reviewer
		set["reviewedAt"] = now
	}
	filter := bson.M{"repId": repID, "version": expectedVersion}
	return r.findOneAndUpdate(ctx, repID, filter, bson.M{"$set": set})
}

// findOneAndUpdate applies a version-conditional update. No match means either
// no plan at all (ErrNotFound) or a stale version (ErrConflict).
func (r *mongoWeeklyPlanRepository) findOneAndUpdate(ctx context.Context, repID primitive.ObjectID, filter, update bson.M) (*domain.WeeklyPlan, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc planDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return fromPlanDoc(doc), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	n, countErr := r.collection.CountDocuments(ctx, bson.M{"repId": repID})
	if countErr != nil {
		return nil, countErr
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrConflict
}

// SetArchiveKey records where the approved plan was archived. It does not bump
// the version; the key is metadata, not plan content.
func (r *mongoWeeklyPlanRepository) SetArchiveKey(ctx context.Context, repID primitive.ObjectID, key string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"repId": repID},
		bson.M{"$set": bson.M{"archiveKey": key}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByStatus lists plans in one status, oldest update first.
func (r *mongoWeeklyPlanRepository) GetByStatus(ctx context.Context, status domain.PlanStatus) ([]domain.WeeklyPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []planDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	plans := make([]domain.WeeklyPlan, 0, len(docs))
	for _, d := range docs {
		plans = append(plans, *fromPlanDoc(d))
	}
	return plans, nil
}

// EnsureWeeklyPlanIndexes creates necessary indexes. Call during startup.
func EnsureWeeklyPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One plan per representative
			Keys:    bson.D{{Key: "repId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Review queue
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
