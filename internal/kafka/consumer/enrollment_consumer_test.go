package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/internal/kafka"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) ConfirmEnrollment(ctx context.Context, userID, courseID string) error {
	return m.Called(userID, courseID).Error(0)
}

// fakeSession реализует только методы, которые вызывает обработчик
type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MemberID() string         { return "member-1" }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	ch chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func newClaim(msgs ...*sarama.ConsumerMessage) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)
	return &fakeClaim{ch: ch}
}

func eventMessage(t *testing.T, offset int64, ev kafka.PaymentEvent) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(ev)
	assert.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: kafka.TopicPaymentSucceeded, Offset: offset, Value: raw}
}

func TestConsumeClaim_ConfirmsAndMarks(t *testing.T) {
	confirmer := &mockConfirmer{}
	confirmer.On("ConfirmEnrollment", "u1", "c1").Return(nil).Once()

	h := NewEnrollmentHandler(confirmer, logger.Discard())
	session := &fakeSession{ctx: context.Background()}
	claim := newClaim(eventMessage(t, 7, kafka.PaymentEvent{ID: "p1", UserID: "u1", CourseID: "c1"}))

	assert.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{7}, session.marked)
	confirmer.AssertExpectations(t)
}

func TestConsumeClaim_SkipsMalformed(t *testing.T) {
	confirmer := &mockConfirmer{}
	h := NewEnrollmentHandler(confirmer, logger.Discard())
	session := &fakeSession{ctx: context.Background()}
	claim := newClaim(
		&sarama.ConsumerMessage{Offset: 1, Value: []byte("{not json")},
		eventMessage(t, 2, kafka.PaymentEvent{ID: "p2"}),
	)

	assert.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{1, 2}, session.marked)
	confirmer.AssertNotCalled(t, "ConfirmEnrollment", mock.Anything, mock.Anything)
}

func TestConsumeClaim_SkipsPermanentFailure(t *testing.T) {
	confirmer := &mockConfirmer{}
	confirmer.On("ConfirmEnrollment", "u1", "gone").Return(domain.NotFound("Course not found"))

	h := NewEnrollmentHandler(confirmer, logger.Discard())
	session := &fakeSession{ctx: context.Background()}
	claim := newClaim(eventMessage(t, 3, kafka.PaymentEvent{ID: "p3", UserID: "u1", CourseID: "gone"}))

	assert.NoError(t, h.ConsumeClaim(session, claim))
	assert.Equal(t, []int64{3}, session.marked)
}

func TestConsumeClaim_TransientFailureStopsWithoutMark(t *testing.T) {
	confirmer := &mockConfirmer{}
	confirmer.On("ConfirmEnrollment", "u1", "c1").Return(domain.Internal("db down", errors.New("conn refused")))

	h := NewEnrollmentHandler(confirmer, logger.Discard())
	session := &fakeSession{ctx: context.Background()}
	claim := newClaim(
		eventMessage(t, 4, kafka.PaymentEvent{ID: "p4", UserID: "u1", CourseID: "c1"}),
		eventMessage(t, 5, kafka.PaymentEvent{ID: "p5", UserID: "u1", CourseID: "c1"}),
	)

	err := h.ConsumeClaim(session, claim)
	assert.ErrorContains(t, err, "p4")
	assert.Empty(t, session.marked)
}

func TestConsumeClaim_StopsOnCanceledSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewEnrollmentHandler(&mockConfirmer{}, logger.Discard())
	session := &fakeSession{ctx: ctx}
	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage)}

	assert.NoError(t, h.ConsumeClaim(session, claim))
}

// fakeGroup возвращает ошибки Consume по очереди; после списка отменяет ctx
type fakeGroup struct {
	sarama.ConsumerGroup
	errs   []error
	calls  int
	cancel context.CancelFunc
}

func (g *fakeGroup) Consume(ctx context.Context, topics []string, handler sarama.ConsumerGroupHandler) error {
	g.calls++
	if g.calls <= len(g.errs) {
		return g.errs[g.calls-1]
	}
	g.cancel()
	return nil
}

func (g *fakeGroup) Errors() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}

type recordingBackOff struct {
	next   time.Duration
	waits  int
	resets int
}

func (b *recordingBackOff) NextBackOff() time.Duration {
	b.waits++
	return b.next
}

func (b *recordingBackOff) Reset() { b.resets++ }

func TestRun_BacksOffBetweenFailedSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokerDown := errors.New("kafka: client has run out of available brokers")
	group := &fakeGroup{errs: []error{brokerDown, brokerDown, nil, brokerDown}, cancel: cancel}
	retry := &recordingBackOff{next: time.Millisecond}
	c := &EnrollmentConsumer{group: group, handler: NewEnrollmentHandler(&mockConfirmer{}, logger.Discard()), log: logger.Discard(), retry: retry}

	assert.NoError(t, c.Run(ctx))
	assert.Equal(t, 5, group.calls)
	assert.Equal(t, 3, retry.waits)
	assert.Equal(t, 1, retry.resets)
}

func TestRun_StopsWhenRetriesExhausted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group := &fakeGroup{errs: []error{errors.New("broker down")}, cancel: cancel}
	c := &EnrollmentConsumer{group: group, handler: NewEnrollmentHandler(&mockConfirmer{}, logger.Discard()), log: logger.Discard(), retry: &backoff.StopBackOff{}}

	err := c.Run(ctx)
	assert.ErrorContains(t, err, "retries exhausted")
	assert.Equal(t, 1, group.calls)
}

func TestRun_ClosedGroupStops(t *testing.T) {
	group := &fakeGroup{errs: []error{sarama.ErrClosedConsumerGroup}, cancel: func() {}}
	retry := &recordingBackOff{next: time.Hour}
	c := &EnrollmentConsumer{group: group, handler: NewEnrollmentHandler(&mockConfirmer{}, logger.Discard()), log: logger.Discard(), retry: retry}

	assert.NoError(t, c.Run(context.Background()))
	assert.Zero(t, retry.waits)
}
