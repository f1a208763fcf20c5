package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientKind tags the variant of a Client.
type ClientKind string

const (
	ClientDoctor   ClientKind = "doctor"
	ClientPharmacy ClientKind = "pharmacy"
)

func (k ClientKind) Valid() bool {
	return k == ClientDoctor || k == ClientPharmacy
}

// Client is a doctor or a pharmacy visited by a representative.
// Specialization is only meaningful for doctors.
type Client struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Kind           ClientKind         `bson:"kind" json:"kind"`
	RegionID       primitive.ObjectID `bson:"regionId" json:"regionId"`
	RepID          primitive.ObjectID `bson:"repId" json:"repId"`
	Specialization string             `bson:"specialization,omitempty" json:"specialization,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AsDoctor narrows c to a Doctor. The second result is false for pharmacies.
func (c Client) AsDoctor() (Doctor, bool) {
	if c.Kind != ClientDoctor {
		return Doctor{}, false
	}
	return Doctor{client: c}, true
}

// Doctor is a Client proven to be of kind doctor. Only doctors can be placed on a
// weekly plan, and the only way to obtain one is Client.AsDoctor.
type Doctor struct {
	client Client
}

func (d Doctor) ID() primitive.ObjectID       { return d.client.ID }
func (d Doctor) Name() string                 { return d.client.Name }
func (d Doctor) RegionID() primitive.ObjectID { return d.client.RegionID }
func (d Doctor) Specialization() string       { return d.client.Specialization }
func (d Doctor) Client() Client               { return d.client }
