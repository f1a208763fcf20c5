package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ObjectStorage is where approved plans are archived.
type ObjectStorage interface {
	// PutObject uploads body under objectKey, replacing any existing object.
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// PlanArchiveKey names a new archive object for a rep's plan of the given week.
// Each approval gets its own object: plans/<repId>/<yyyy-mm-dd>/<uuid>.json.
func PlanArchiveKey(repID primitive.ObjectID, weekStart time.Time) string {
	return PlanArchivePrefix(repID, weekStart) + uuid.NewString() + ".json"
}

// PlanArchivePrefix is the common prefix of every archive of one rep's week.
func PlanArchivePrefix(repID primitive.ObjectID, weekStart time.Time) string {
	return fmt.Sprintf("plans/%s/%s/", repID.Hex(), weekStart.Format("2006-01-02"))
}
