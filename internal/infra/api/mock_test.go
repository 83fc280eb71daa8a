//go:build !integration

package api_test

import (
	"context"

	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type mockUsers struct {
	byID map[string]*model.User
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) Upsert(ctx context.Context, u *model.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *mockUsers) Subscription(ctx context.Context, id string) (*usecase.SubscriptionView, error) {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &usecase.SubscriptionView{Type: u.Subscription.Type, Expires: u.Subscription.Expires, AgeGroup: u.AgeGroup}, nil
}

type mockCheckout struct {
	Unconfigured bool
	StartFunc    func(ctx context.Context, user *model.User, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error)
}

func (m *mockCheckout) Configured() bool { return !m.Unconfigured }

func (m *mockCheckout) StartCheckout(ctx context.Context, user *model.User, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error) {
	return m.StartFunc(ctx, user, req)
}

type mockPayments struct {
	CheckStatusFunc func(ctx context.Context, userID, sessionID string) (*usecase.PaymentStatusView, error)
	WebhookFunc     func(ctx context.Context, body []byte, sig string) error
	HistoryFunc     func(ctx context.Context, userID string, limit int) ([]*model.PaymentTransaction, error)
}

func (m *mockPayments) ApplyConfirmedPayment(ctx context.Context, sessionID string, reported model.PaymentStatus, ref string) (*model.PaymentTransaction, error) {
	return nil, domain.ErrNotFound
}

func (m *mockPayments) CheckStatus(ctx context.Context, userID, sessionID string) (*usecase.PaymentStatusView, error) {
	return m.CheckStatusFunc(ctx, userID, sessionID)
}

func (m *mockPayments) HandleWebhook(ctx context.Context, body []byte, sig string) error {
	return m.WebhookFunc(ctx, body, sig)
}

func (m *mockPayments) History(ctx context.Context, userID string, limit int) ([]*model.PaymentTransaction, error) {
	if m.HistoryFunc == nil {
		return nil, nil
	}
	return m.HistoryFunc(ctx, userID, limit)
}

type mockCourses struct {
	ListFunc   func(ctx context.Context, viewer *model.User, f model.CourseFilter) ([]*model.Course, error)
	GetFunc    func(ctx context.Context, viewer *model.User, id string) (*model.Course, error)
	StreamFunc func(ctx context.Context, viewer *model.User, courseID, videoID string) (*usecase.StreamLink, error)
}

func (m *mockCourses) List(ctx context.Context, viewer *model.User, f model.CourseFilter) ([]*model.Course, error) {
	return m.ListFunc(ctx, viewer, f)
}

func (m *mockCourses) Get(ctx context.Context, viewer *model.User, id string) (*model.Course, error) {
	return m.GetFunc(ctx, viewer, id)
}

func (m *mockCourses) StreamVideo(ctx context.Context, viewer *model.User, courseID, videoID string) (*usecase.StreamLink, error) {
	return m.StreamFunc(ctx, viewer, courseID, videoID)
}

type mockEnrollments struct {
	EnrollFunc func(ctx context.Context, student *model.User, courseID string) (*model.Enrollment, error)
	RecordFunc func(ctx context.Context, studentID, courseID, videoID string, secs int64) (*model.Enrollment, error)
	GetFunc    func(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	ListFunc   func(ctx context.Context, studentID string) ([]*model.Enrollment, error)
	PathFunc   func(ctx context.Context, student *model.User) (*usecase.LearningPath, error)
}

func (m *mockEnrollments) Enroll(ctx context.Context, student *model.User, courseID string) (*model.Enrollment, error) {
	return m.EnrollFunc(ctx, student, courseID)
}

func (m *mockEnrollments) RecordCompletion(ctx context.Context, studentID, courseID, videoID string, secs int64) (*model.Enrollment, error) {
	return m.RecordFunc(ctx, studentID, courseID, videoID, secs)
}

func (m *mockEnrollments) Get(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	return m.GetFunc(ctx, studentID, courseID)
}

func (m *mockEnrollments) ListMine(ctx context.Context, studentID string) ([]*model.Enrollment, error) {
	return m.ListFunc(ctx, studentID)
}

func (m *mockEnrollments) LearningPath(ctx context.Context, student *model.User) (*usecase.LearningPath, error) {
	return m.PathFunc(ctx, student)
}
