package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// ClientAlert is the derived "how long since we last saw this client" record.
// DaysSinceLastVisit is nil when the client was never visited.
type ClientAlert struct {
	ClientID           primitive.ObjectID `json:"clientId"`
	ClientName         string             `json:"clientName"`
	ClientKind         ClientKind         `json:"clientKind"`
	RepID              primitive.ObjectID `json:"repId"`
	RegionID           primitive.ObjectID `json:"regionId"`
	DaysSinceLastVisit *int               `json:"daysSinceLastVisit"`
}

// VisitFrequency buckets clients by how many times they were visited this month.
type VisitFrequency struct {
	Freq1 int `json:"freq1"` // exactly once
	Freq2 int `json:"freq2"` // exactly twice
	Freq3 int `json:"freq3"` // three or more times
}
