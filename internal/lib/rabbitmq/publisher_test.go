package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishMessage(t *testing.T) {
	type testMsg struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	t.Run("success", func(t *testing.T) {
		pub := new(PublisherMock)
		pub.On("Publish", MailExchange, "confirmation", false, false, mock.MatchedBy(func(p amqp.Publishing) bool {
			var got testMsg
			if err := json.Unmarshal(p.Body, &got); err != nil {
				return false
			}
			return got.ID == 1 && got.Name == "Hello" &&
				p.ContentType == "application/json" &&
				p.DeliveryMode == amqp.Persistent
		})).Return(nil).Once()

		err := PublishMessage(pub, MailExchange, "confirmation", testMsg{ID: 1, Name: "Hello"})
		require.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("marshal error", func(t *testing.T) {
		pub := new(PublisherMock)
		badMsg := struct {
			Ch chan int `json:"ch"`
		}{Ch: make(chan int)}

		err := PublishMessage(pub, MailExchange, "confirmation", badMsg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
		pub.AssertNotCalled(t, "Publish")
	})

	t.Run("publish error", func(t *testing.T) {
		pub := new(PublisherMock)
		pub.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).
			Return(errors.New("channel closed")).Once()

		err := PublishMessage(pub, MailExchange, "confirmation", testMsg{ID: 2})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "channel closed")
	})
}

func TestGetMailQueues(t *testing.T) {
	queues := GetMailQueues()

	require.NotEmpty(t, queues)
	assert.Equal(t, ConfirmationQueue, queues[0])

	seen := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
	}
}
