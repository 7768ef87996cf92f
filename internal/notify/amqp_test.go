package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/testutil"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	durable    bool
	published  []published
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.declared = append(c.declared, name+"/"+kind)
	c.durable = durable
	return nil
}

func (c *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type AMQPSuite struct {
	suite.Suite
	ch        *fakeChannel
	publisher *AMQPPublisher
}

func TestAMQPSuite(t *testing.T) {
	suite.Run(t, new(AMQPSuite))
}

func (s *AMQPSuite) SetupTest() {
	s.ch = &fakeChannel{}
	p, err := newAMQPPublisher(s.ch, "arcade.events", testutil.NopLogger())
	s.Require().NoError(err)
	s.publisher = p
}

func (s *AMQPSuite) TestDeclaresDurableDirectExchange() {
	s.Equal([]string{"arcade.events/direct"}, s.ch.declared)
	s.True(s.ch.durable)
}

func (s *AMQPSuite) TestPublishRoutesByEventType() {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := s.publisher.Publish(context.Background(), model.Event{
		Type:      model.EventSettled,
		Timestamp: ts,
		SessionID: "s1",
		PlayerID:  "player-1",
		Payload:   model.SettledPayload{Settlement: model.Settlement{Key: "s1:1", CoinsAwarded: 12}},
	})
	s.Require().NoError(err)
	s.Require().Len(s.ch.published, 1)

	got := s.ch.published[0]
	s.Equal("arcade.events", got.exchange)
	s.Equal("session_settled", got.key)
	s.Equal("application/json", got.msg.ContentType)
	s.Equal(amqp.Persistent, got.msg.DeliveryMode)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(got.msg.Body, &body))
	s.Equal("session_settled", body["type"])
	s.Equal("s1", body["session_id"])
	s.Equal("player-1", body["player_id"])
}

func (s *AMQPSuite) TestMessageIDsUniqueForSameTimestamp() {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		err := s.publisher.Publish(context.Background(), model.Event{
			Type:      model.EventCascadeStep,
			Timestamp: ts,
			SessionID: "s1",
			Payload:   model.CascadeStepPayload{CascadeIndex: i},
		})
		s.Require().NoError(err)
	}
	s.Require().Len(s.ch.published, 3)

	ids := make(map[string]struct{})
	for _, p := range s.ch.published {
		s.True(strings.HasPrefix(p.msg.MessageId, "s1:cascade_step:"), p.msg.MessageId)
		ids[p.msg.MessageId] = struct{}{}
	}
	s.Len(ids, 3)
	s.Equal(fmt.Sprintf("s1:cascade_step:%d:3", ts.UnixNano()), s.ch.published[2].msg.MessageId)
}

func (s *AMQPSuite) TestPublishError() {
	s.ch.publishErr = errors.New("channel closed")
	err := s.publisher.Publish(context.Background(), model.Event{Type: model.EventSessionEnded})
	s.Error(err)
}

func (s *AMQPSuite) TestPublishCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.publisher.Publish(ctx, model.Event{Type: model.EventSessionEnded})
	s.ErrorIs(err, context.Canceled)
	s.Empty(s.ch.published)
}

func (s *AMQPSuite) TestClose() {
	s.Require().NoError(s.publisher.Close())
	s.True(s.ch.closed)
}

func (s *AMQPSuite) TestMemoryPublisherRecords() {
	p := NewMemoryPublisher()
	_ = p.Publish(context.Background(), model.Event{Type: model.EventLevelUp})
	_ = p.Publish(context.Background(), model.Event{Type: model.EventSessionEnded})

	events := p.Events()
	s.Require().Len(events, 2)
	s.Equal(model.EventLevelUp, events[0].Type)
}
