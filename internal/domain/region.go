package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Region is a sales territory. Reference data, created by managers.
type Region struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
