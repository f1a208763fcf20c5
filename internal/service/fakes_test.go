package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"fieldsales/visit-planner/internal/cache"
	"fieldsales/visit-planner/internal/domain"
	"fieldsales/visit-planner/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBackendDown = errors.New("backend unavailable")

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrAlreadyExists
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID] = &cp
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) add(role domain.Role) primitive.ObjectID {
	id, _ := r.Create(context.Background(), &domain.User{Name: string(role), Email: primitive.NewObjectID().Hex() + "@example.com", Role: role})
	return id
}

// --- regions ---

type fakeRegionRepo struct {
	mu      sync.Mutex
	regions []domain.Region
}

func (r *fakeRegionRepo) Create(ctx context.Context, region *domain.Region) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.regions {
		if g.Name == region.Name {
			return primitive.NilObjectID, repository.ErrAlreadyExists
		}
	}
	region.ID = primitive.NewObjectID()
	r.regions = append(r.regions, *region)
	return region.ID, nil
}

func (r *fakeRegionRepo) GetAll(ctx context.Context) ([]domain.Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Region{}, r.regions...), nil
}

func (r *fakeRegionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.regions {
		if g.ID == id {
			cp := g
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- clients ---

type fakeClientRepo struct {
	mu      sync.Mutex
	clients []domain.Client
	err     error
}

func (r *fakeClientRepo) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client.ID = primitive.NewObjectID()
	r.clients = append(r.clients, *client)
	return client.ID, nil
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeClientRepo) GetByRepID(ctx context.Context, repID primitive.ObjectID) ([]domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Client
	for _, c := range r.clients {
		if c.RepID == repID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) GetAll(ctx context.Context) ([]domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Client{}, r.clients...), nil
}

func (r *fakeClientRepo) add(kind domain.ClientKind, name string, region, rep primitive.ObjectID) domain.Client {
	c := domain.Client{Name: name, Kind: kind, RegionID: region, RepID: rep}
	_, _ = r.Create(context.Background(), &c)
	return c
}

// --- visits ---

type fakeVisitRepo struct {
	mu     sync.Mutex
	visits []domain.Visit
	reads  int
}

func (r *fakeVisitRepo) Create(ctx context.Context, visit *domain.Visit) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	visit.ID = primitive.NewObjectID()
	r.visits = append(r.visits, *visit)
	return visit.ID, nil
}

func (r *fakeVisitRepo) GetByRepID(ctx context.Context, repID primitive.ObjectID, since time.Time) ([]domain.Visit, error) {
	return r.find(func(v domain.Visit) bool { return v.RepID == repID && !v.VisitedAt.Before(since) })
}

func (r *fakeVisitRepo) GetAll(ctx context.Context, since time.Time) ([]domain.Visit, error) {
	return r.find(func(v domain.Visit) bool { return !v.VisitedAt.Before(since) })
}

func (r *fakeVisitRepo) find(keep func(domain.Visit) bool) ([]domain.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	var out []domain.Visit
	for _, v := range r.visits {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitedAt.After(out[j].VisitedAt) })
	return out, nil
}

// --- plans ---

type fakePlanRepo struct {
	mu     sync.Mutex
	plans  map[primitive.ObjectID]*domain.WeeklyPlan
	calls  int
	writes int
	getErr error
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[primitive.ObjectID]*domain.WeeklyPlan{}}
}

func (r *fakePlanRepo) GetByRepID(ctx context.Context, repID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.plans[repID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *fakePlanRepo) Upsert(ctx context.Context, plan *domain.WeeklyPlan, expectedVersion int64) (*domain.WeeklyPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	cur := r.plans[plan.RepID]
	var curVersion int64
	if cur != nil {
		curVersion = cur.Version
	}
	if curVersion != expectedVersion {
		return nil, repository.ErrConflict
	}
	r.writes++
	cp := plan.Clone()
	cp.Status = domain.PlanPending
	cp.Version = expectedVersion + 1
	if cur == nil {
		cp.ID = primitive.NewObjectID()
	}
	r.plans[plan.RepID] = cp
	return cp.Clone(), nil
}

func (r *fakePlanRepo) SetStatus(ctx context.Context, repID primitive.ObjectID, status domain.PlanStatus, reviewer *primitive.ObjectID, expectedVersion int64) (*domain.WeeklyPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	cur, ok := r.plans[repID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return nil, repository.ErrConflict
	}
	r.writes++
	cp := cur.Clone()
	cp.Status = status
	cp.Version++
	if reviewer != nil {
		by := *reviewer
		at := time.Now().UTC()
		cp.ReviewedBy = &by
		cp.ReviewedAt = &at
	}
	r.plans[repID] = cp
	return cp.Clone(), nil
}

func (r *fakePlanRepo) SetArchiveKey(ctx context.Context, repID primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.plans[repID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.ArchiveKey = key
	return nil
}

func (r *fakePlanRepo) GetByStatus(ctx context.Context, status domain.PlanStatus) ([]domain.WeeklyPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WeeklyPlan
	for _, p := range r.plans {
		if p.Status == status {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (r *fakePlanRepo) stored(repID primitive.ObjectID) *domain.WeeklyPlan {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[repID]; ok {
		return p.Clone()
	}
	return nil
}

// --- object storage ---

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = append([]byte(nil), body...)
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://archive.example.com/" + key + "?expires=" + expires.String(), nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

// --- kv ---

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// fixedClock returns a settable clock.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }
