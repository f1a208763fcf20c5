package planning

import (
	"testing"

	"fieldsales/visit-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	regionA, regionB primitive.ObjectID
	rep              primitive.ObjectID
	clients          []domain.Client
}

func newFixture() *fixture {
	return &fixture{
		regionA: primitive.NewObjectID(),
		regionB: primitive.NewObjectID(),
		rep:     primitive.NewObjectID(),
	}
}

func (f *fixture) doctor(t *testing.T, name string, region primitive.ObjectID) domain.Doctor {
	t.Helper()
	c := domain.Client{
		ID:             primitive.NewObjectID(),
		Name:           name,
		Kind:           domain.ClientDoctor,
		RegionID:       region,
		RepID:          f.rep,
		Specialization: "cardiology",
	}
	f.clients = append(f.clients, c)
	d, ok := c.AsDoctor()
	if !ok {
		t.Fatalf("client %s is not a doctor", name)
	}
	return d
}

func (f *fixture) pharmacy(name string, region primitive.ObjectID) domain.Client {
	c := domain.Client{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Kind:     domain.ClientPharmacy,
		RegionID: region,
		RepID:    f.rep,
	}
	f.clients = append(f.clients, c)
	return c
}
