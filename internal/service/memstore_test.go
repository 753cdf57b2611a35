package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"coursemarket/internal/model"
	"coursemarket/internal/repository"
)

// memStore is an in-memory repository.Store with the same uniqueness rules as
// the real backends.
type memStore struct {
	mu        sync.Mutex
	admins    map[uuid.UUID]model.Admin
	users     map[uuid.UUID]model.User
	courses   map[uuid.UUID]model.Course
	purchases []model.Purchase
}

func newMemStore() *memStore {
	return &memStore{
		admins:  map[uuid.UUID]model.Admin{},
		users:   map[uuid.UUID]model.User{},
		courses: map[uuid.UUID]model.Course{},
	}
}

func (m *memStore) store() *repository.Store {
	return &repository.Store{
		Admins:    memAdmins{m},
		Users:     memUsers{m},
		Courses:   memCourses{m},
		Purchases: memPurchases{m},
		Close:     func() error { return nil },
	}
}

func (m *memStore) purchaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.purchases)
}

type memAdmins struct{ m *memStore }

func (r memAdmins) Create(_ context.Context, a *model.Admin) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.admins {
		if existing.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	r.m.admins[a.ID] = *a
	return nil
}

func (r memAdmins) FindByID(_ context.Context, id uuid.UUID) (*model.Admin, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r memAdmins) FindByEmail(_ context.Context, email string) (*model.Admin, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memAdmins) SetImageRef(_ context.Context, id uuid.UUID, ref string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.admins[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ImageRef = &ref
	r.m.admins[id] = a
	return nil
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.m.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) SetImageRef(_ context.Context, id uuid.UUID, ref string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ImageRef = &ref
	r.m.users[id] = u
	return nil
}

type memCourses struct{ m *memStore }

func (r memCourses) Create(_ context.Context, c *model.Course) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	r.m.courses[c.ID] = *c
	return nil
}

func (r memCourses) Update(_ context.Context, c *model.Course) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	r.m.courses[c.ID] = *c
	return nil
}

func (r memCourses) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.m.courses, id)
	return nil
}

func (r memCourses) FindByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r memCourses) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []model.Course{}
	for _, id := range ids {
		if c, ok := r.m.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCourses) List(_ context.Context, q model.CourseQuery) ([]model.Course, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	matched := []model.Course{}
	for _, c := range r.m.courses {
		if q.OwnerAdminID != nil && c.OwnerAdminID != *q.OwnerAdminID {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if q.Desc {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := min(q.Offset(), len(matched))
	end := min(start+q.Limit, len(matched))
	return matched[start:end], total, nil
}

type memPurchases struct{ m *memStore }

func (r memPurchases) Create(_ context.Context, p *model.Purchase) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.purchases {
		if existing.UserID == p.UserID && existing.CourseID == p.CourseID {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.m.purchases = append(r.m.purchases, *p)
	return nil
}

func (r memPurchases) FindByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*model.Purchase, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.purchases {
		if p.UserID == userID && p.CourseID == courseID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memPurchases) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Purchase, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []model.Purchase{}
	for _, p := range r.m.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}
