package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/metrics"
	"github.com/Dhoini/course-marketplace/internal/notification"
	"github.com/Dhoini/course-marketplace/internal/repository"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	tutor   = domain.Caller{ID: "tutor-1", Role: domain.RoleTutor, Email: "tutor@example.com"}
	student = domain.Caller{ID: "student-1", Role: domain.RoleStudent, Email: "student@example.com"}
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateOneTimeSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	args := m.Called(req)
	return args.Get(0).(domain.CheckoutSession), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishPaymentPending(ctx context.Context, payment domain.Payment) error {
	return m.Called("pending", payment.ID).Error(0)
}

func (m *mockPublisher) PublishPaymentSucceeded(ctx context.Context, payment domain.Payment) error {
	return m.Called("succeeded", payment.ID).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, email notification.Email) error {
	return m.Called(email.To, email.Subject).Error(0)
}

type fixture struct {
	log         *logger.Logger
	metrics     metrics.MarketplaceMetrics
	courses     *repository.InMemoryCourseRepository
	payments    *repository.InMemoryPaymentRepository
	enrollments *repository.InMemoryEnrollmentRepository
}

func newFixture() *fixture {
	log := logger.Discard()
	courses := repository.NewInMemoryCourseRepository(log)
	return &fixture{
		log:         log,
		metrics:     metrics.NewMarketplaceMetrics(prometheus.NewRegistry(), log),
		courses:     courses,
		payments:    repository.NewInMemoryPaymentRepository(log),
		enrollments: repository.NewInMemoryEnrollmentRepository(courses, log),
	}
}

func validCourse() domain.NewCourse {
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return domain.NewCourse{
		Title:       "Go basics",
		Description: "Intro",
		ZoomLink:    "https://zoom.us/j/123",
		Price:       19.99,
		Slots:       []domain.Slot{{StartTime: start, EndTime: start.Add(time.Hour)}},
	}
}

func (f *fixture) seedCourse(t *testing.T) domain.Course {
	t.Helper()
	svc := NewCourseService(f.courses, f.metrics, f.log)
	course, err := svc.CreateCourse(context.Background(), tutor, validCourse())
	require.NoError(t, err)
	return course
}

func TestCreateCourse(t *testing.T) {
	f := newFixture()
	svc := NewCourseService(f.courses, f.metrics, f.log)
	ctx := context.Background()

	created, err := svc.CreateCourse(ctx, tutor, validCourse())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, tutor.ID, created.TutorID)
	assert.Equal(t, domain.SlotStatusAvailable, created.Slots[0].Status)

	all, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created, all[0])

	own, err := svc.ListCoursesByTutor(ctx, tutor, tutor.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, created, own[0])
}

func TestCreateCourse_Forbidden(t *testing.T) {
	f := newFixture()
	svc := NewCourseService(f.courses, f.metrics, f.log)

	for _, caller := range []domain.Caller{{}, student} {
		_, err := svc.CreateCourse(context.Background(), caller, validCourse())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	}

	all, err := svc.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateCourse_Validation(t *testing.T) {
	f := newFixture()
	svc := NewCourseService(f.courses, f.metrics, f.log)

	missing := validCourse()
	missing.Title = ""
	_, err := svc.CreateCourse(context.Background(), tutor, missing)
	assert.EqualError(t, err, "Missing required fields")

	negative := validCourse()
	negative.Price = -5
	_, err = svc.CreateCourse(context.Background(), tutor, negative)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	reversed := validCourse()
	reversed.Slots[0].StartTime, reversed.Slots[0].EndTime = reversed.Slots[0].EndTime, reversed.Slots[0].StartTime
	_, err = svc.CreateCourse(context.Background(), tutor, reversed)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.ErrorContains(t, err, "startTime must be before endTime")

	badLink := validCourse()
	badLink.ZoomLink = "zoom"
	_, err = svc.CreateCourse(context.Background(), tutor, badLink)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestListCoursesByTutor_OtherTutor(t *testing.T) {
	f := newFixture()
	svc := NewCourseService(f.courses, f.metrics, f.log)

	_, err := svc.ListCoursesByTutor(context.Background(), tutor, "tutor-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ListCoursesByTutor(context.Background(), domain.Caller{ID: "tutor-2", Role: domain.RoleStudent}, "tutor-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInitiateEnrollment(t *testing.T) {
	f := newFixture()
	course := f.seedCourse(t)

	provider := &mockProvider{}
	provider.On("CreateOneTimeSession", mock.MatchedBy(func(req domain.CheckoutRequest) bool {
		return req.AmountMinor == 1999 &&
			req.Currency == "usd" &&
			req.ClientReferenceID == student.ID &&
			req.SuccessURL == "https://app/success" &&
			req.CancelURL == "https://app/default-cancel" &&
			req.Metadata[domain.MetadataUserID] == student.ID &&
			req.Metadata[domain.MetadataCourseID] == course.ID &&
			req.Metadata[domain.MetadataPaymentID] != ""
	})).Return(domain.CheckoutSession{ID: "cs_test_1", URL: "https://checkout/cs_test_1"}, nil).Once()

	publisher := &mockPublisher{}
	publisher.On("PublishPaymentPending", "pending", mock.Anything).Return(errors.New("broker down"))

	svc := NewCheckoutService(f.courses, f.payments, provider, publisher, f.metrics, CheckoutOptions{
		Currency:         "usd",
		DefaultCancelURL: "https://app/default-cancel",
	}, f.log)

	session, err := svc.InitiateEnrollment(context.Background(), student, course.ID, "https://app/success", "")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)

	require.Equal(t, 1, f.payments.Count())
	paymentID := provider.Calls[0].Arguments.Get(0).(domain.CheckoutRequest).Metadata[domain.MetadataPaymentID]
	payment, err := f.payments.GetByID(context.Background(), paymentID)
	require.NoError(t, err)
	assert.Equal(t, 19.99, payment.Amount)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, student.ID, payment.UserID)
	assert.Equal(t, course.ID, payment.CourseID)
	assert.Equal(t, "cs_test_1", payment.ProviderSessionID)

	provider.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestInitiateEnrollment_Forbidden(t *testing.T) {
	f := newFixture()
	course := f.seedCourse(t)
	provider := &mockProvider{}

	svc := NewCheckoutService(f.courses, f.payments, provider, &mockPublisher{}, f.metrics, CheckoutOptions{}, f.log)

	for _, caller := range []domain.Caller{{}, tutor} {
		_, err := svc.InitiateEnrollment(context.Background(), caller, course.ID, "", "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.EqualError(t, err, "User not authenticated or not a student")
	}

	assert.Zero(t, f.payments.Count())
	provider.AssertNotCalled(t, "CreateOneTimeSession", mock.Anything)
}

func TestInitiateEnrollment_CourseNotFound(t *testing.T) {
	f := newFixture()
	provider := &mockProvider{}

	svc := NewCheckoutService(f.courses, f.payments, provider, &mockPublisher{}, f.metrics, CheckoutOptions{}, f.log)

	_, err := svc.InitiateEnrollment(context.Background(), student, "missing", "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Course not found")
	assert.Zero(t, f.payments.Count())
	provider.AssertNotCalled(t, "CreateOneTimeSession", mock.Anything)
}

func TestInitiateEnrollment_ProviderFailure(t *testing.T) {
	f := newFixture()
	course := f.seedCourse(t)

	provider := &mockProvider{}
	provider.On("CreateOneTimeSession", mock.Anything).Return(domain.CheckoutSession{}, errors.New("stripe down"))

	svc := NewCheckoutService(f.courses, f.payments, provider, &mockPublisher{}, f.metrics, CheckoutOptions{}, f.log)

	_, err := svc.InitiateEnrollment(context.Background(), student, course.ID, "", "")
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Zero(t, f.payments.Count())
}

func TestConfirmEnrollment_Idempotent(t *testing.T) {
	f := newFixture()
	course := f.seedCourse(t)
	svc := NewEnrollmentService(f.enrollments, f.metrics, f.log)
	ctx := context.Background()

	require.NoError(t, svc.ConfirmEnrollment(ctx, student.ID, course.ID))
	require.NoError(t, svc.ConfirmEnrollment(ctx, student.ID, course.ID))

	courses, err := svc.ListEnrollments(ctx, student, student.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, course.ID, courses[0].ID)

	err = svc.ConfirmEnrollment(ctx, student.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEnrollments_Forbidden(t *testing.T) {
	f := newFixture()
	svc := NewEnrollmentService(f.enrollments, f.metrics, f.log)

	_, err := svc.ListEnrollments(context.Background(), student, "student-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ListEnrollments(context.Background(), domain.Caller{}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
