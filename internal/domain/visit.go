package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visit is one recorded call by a representative on a client.
// ClientName and ClientKind are denormalized at write time so reports keep
// working after a client is removed.
type Visit struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RepID      primitive.ObjectID `bson:"repId" json:"repId"`
	ClientID   primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	ClientName string             `bson:"clientName" json:"clientName"`
	ClientKind ClientKind         `bson:"clientKind" json:"clientKind"`
	RegionID   primitive.ObjectID `bson:"regionId,omitempty" json:"regionId,omitempty"`
	VisitedAt  time.Time          `bson:"visitedAt" json:"visitedAt"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
