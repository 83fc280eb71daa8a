//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock TransactionManager ----

// MockTxManager runs fn without a real transaction; the mocks below are
// individually atomic, which is all the use cases rely on.
type MockTxManager struct{}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu        sync.Mutex
	bySession map[string]*model.PaymentTransaction

	InsertErr error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{bySession: make(map[string]*model.PaymentTransaction)}
}

func (m *MockPaymentRepo) Insert(ctx context.Context, tx repository.Tx, p *model.PaymentTransaction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return false, m.InsertErr
	}
	if _, ok := m.bySession[p.SessionID]; ok {
		return false, nil
	}
	cp := *p
	m.bySession[p.SessionID] = &cp
	return true, nil
}

func (m *MockPaymentRepo) FindBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.bySession[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) UpdateStatusIfOpen(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, externalRef *string, completedAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.bySession {
		if p.ID != id {
			continue
		}
		if p.Status != model.PaymentStatusPending && p.Status != model.PaymentStatusInitiated {
			return false, nil
		}
		p.Status = status
		p.CompletedAt = completedAt
		if externalRef != nil {
			p.ExternalRef = externalRef
		}
		p.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (m *MockPaymentRepo) SetExternalRef(ctx context.Context, tx repository.Tx, id string, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.bySession {
		if p.ID == id && p.ExternalRef == nil {
			r := ref
			p.ExternalRef = &r
		}
	}
	return nil
}

func (m *MockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentTransaction
	for _, p := range m.bySession {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User

	SetSubscriptionCalls int
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if old, ok := m.users[u.ID]; ok {
		cp.Subscription = old.Subscription
	}
	m.users[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) SetSubscription(ctx context.Context, tx repository.Tx, userID string, subType model.BillingCycle, expires *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	m.SetSubscriptionCalls++
	t := subType
	u.Subscription.Type = &t
	u.Subscription.Expires = expires
	return nil
}

// ---- Mock CourseRepository ----

type MockCourseRepo struct {
	mu      sync.Mutex
	courses map[string]*model.Course
}

var _ repository.CourseRepository = (*MockCourseRepo)(nil)

func NewMockCourseRepo(cs ...*model.Course) *MockCourseRepo {
	m := &MockCourseRepo{courses: make(map[string]*model.Course)}
	for _, c := range cs {
		m.courses[c.ID] = c
	}
	return m
}

func (m *MockCourseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	return nil
}

func (m *MockCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *MockCourseRepo) List(ctx context.Context, tx repository.Tx, f model.CourseFilter) ([]*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Course
	for _, c := range m.courses {
		if f.PublishedOnly && !c.IsPublished {
			continue
		}
		if f.AgeGroup != "" && c.AgeGroup != f.AgeGroup {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockCourseRepo) CountVideos(ctx context.Context, tx repository.Tx, courseID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[courseID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return len(c.Videos), nil
}

// ---- Mock EnrollmentRepository ----

type MockEnrollmentRepo struct {
	mu   sync.Mutex
	rows map[string]*model.Enrollment
}

var _ repository.EnrollmentRepository = (*MockEnrollmentRepo)(nil)

func NewMockEnrollmentRepo() *MockEnrollmentRepo {
	return &MockEnrollmentRepo{rows: make(map[string]*model.Enrollment)}
}

func enrollmentKey(studentID, courseID string) string { return studentID + "|" + courseID }

func (m *MockEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := enrollmentKey(e.StudentID, e.CourseID)
	if _, ok := m.rows[k]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *e
	m.rows[k] = &cp
	return nil
}

func (m *MockEnrollmentRepo) Find(ctx context.Context, tx repository.Tx, studentID, courseID string) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[enrollmentKey(studentID, courseID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	cp.CompletedVideos = append([]string(nil), e.CompletedVideos...)
	return &cp, nil
}

func (m *MockEnrollmentRepo) ListByStudent(ctx context.Context, tx repository.Tx, studentID string) ([]*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Enrollment
	for _, e := range m.rows {
		if e.StudentID != studentID {
			continue
		}
		cp := *e
		cp.CompletedVideos = append([]string(nil), e.CompletedVideos...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].EnrolledAt.After(out[j].EnrolledAt)
	})
	return out, nil
}

func (m *MockEnrollmentRepo) AddCompletedVideo(ctx context.Context, tx repository.Tx, studentID, courseID, videoID string, watchedSeconds int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[enrollmentKey(studentID, courseID)]
	if !ok {
		return 0, domain.ErrNotFound
	}
	found := false
	for _, v := range e.CompletedVideos {
		if v == videoID {
			found = true
			break
		}
	}
	if !found {
		e.CompletedVideos = append(e.CompletedVideos, videoID)
	}
	e.WatchTimeSeconds += watchedSeconds
	return len(e.CompletedVideos), nil
}

func (m *MockEnrollmentRepo) SetProgress(ctx context.Context, tx repository.Tx, studentID, courseID string, pct float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[enrollmentKey(studentID, courseID)]
	if !ok {
		return domain.ErrNotFound
	}
	e.ProgressPercentage = pct
	return nil
}

// ---- Mock Limiter ----

type MockLimiter struct {
	Allowed bool
	Err     error
	Keys    []string
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.Keys = append(m.Keys, key)
	return m.Allowed, m.Err
}

// ---- Mock ContentStore ----

type MockContentStore struct{}

func (MockContentStore) StreamURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://media.test/" + key + "?ttl=" + ttl.String(), nil
}
