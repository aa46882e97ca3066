package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/metinatakli/cinex-booking/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type IdempotencyTestSuite struct {
	suite.Suite
	client *mocks.MockRedisClient
	store  *Store
}

func TestIdempotencySuite(t *testing.T) {
	suite.Run(t, new(IdempotencyTestSuite))
}

func (s *IdempotencyTestSuite) SetupTest() {
	s.client = new(mocks.MockRedisClient)
	s.store = NewStore(s.client, 24*time.Hour, time.Minute)
}

func (s *IdempotencyTestSuite) TestKey() {
	s.Equal("idemp:42:abc", s.store.Key(42, "abc"))
}

func (s *IdempotencyTestSuite) TestBeginClaimsFreshKey() {
	s.client.On("SetNX", mock.Anything, "idemp:42:abc", inFlightMarker, time.Minute).
		Return(redis.NewBoolResult(true, nil)).Once()

	resp, err := s.store.Begin(context.Background(), 42, "abc")
	s.NoError(err)
	s.Nil(resp)
	s.client.AssertExpectations(s.T())
}

func (s *IdempotencyTestSuite) TestBeginReplaysCompletedResponse() {
	stored, err := json.Marshal(Response{Status: 201, Body: json.RawMessage(`{"id":1}`)})
	s.Require().NoError(err)

	s.client.On("SetNX", mock.Anything, "idemp:42:abc", inFlightMarker, time.Minute).
		Return(redis.NewBoolResult(false, nil)).Once()
	s.client.On("Get", mock.Anything, "idemp:42:abc").
		Return(redis.NewStringResult(string(stored), nil)).Once()

	resp, err := s.store.Begin(context.Background(), 42, "abc")
	s.Require().NoError(err)
	s.Equal(201, resp.Status)
	s.JSONEq(`{"id":1}`, string(resp.Body))
}

func (s *IdempotencyTestSuite) TestBeginRejectsInFlightKey() {
	s.client.On("SetNX", mock.Anything, "idemp:42:abc", inFlightMarker, time.Minute).
		Return(redis.NewBoolResult(false, nil)).Once()
	s.client.On("Get", mock.Anything, "idemp:42:abc").
		Return(redis.NewStringResult(inFlightMarker, nil)).Once()

	_, err := s.store.Begin(context.Background(), 42, "abc")
	s.ErrorIs(err, ErrInProgress)
}

func (s *IdempotencyTestSuite) TestBeginPropagatesRedisErrors() {
	s.client.On("SetNX", mock.Anything, "idemp:42:abc", inFlightMarker, time.Minute).
		Return(redis.NewBoolResult(false, errors.New("connection refused"))).Once()

	_, err := s.store.Begin(context.Background(), 42, "abc")
	s.Error(err)
}

func (s *IdempotencyTestSuite) TestCompleteAndAbandon() {
	s.client.On("Set", mock.Anything, "idemp:42:abc", mock.Anything, 24*time.Hour).
		Return(redis.NewStatusResult("OK", nil)).Once()
	s.client.On("Del", mock.Anything, []string{"idemp:42:abc"}).
		Return(redis.NewIntResult(1, nil)).Once()

	s.NoError(s.store.Complete(context.Background(), 42, "abc", Response{Status: 201, Body: json.RawMessage(`{}`)}))
	s.NoError(s.store.Abandon(context.Background(), 42, "abc"))
	s.client.AssertExpectations(s.T())
}
