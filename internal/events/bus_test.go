package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeReceivesOnlyItsTopic(t *testing.T) {
	bus := NewBus()

	var loginEvents []Event
	bus.Subscribe(TopicUserLogin, func(e Event) {
		loginEvents = append(loginEvents, e)
	})

	bus.Publish(TopicUserLogin, map[string]interface{}{"userId": "user_1"})
	bus.Publish(TopicUserLogout, map[string]interface{}{"userId": "user_1"})

	assert.Len(t, loginEvents, 1)
	assert.Equal(t, TopicUserLogin, loginEvents[0].Topic)
}

func TestBus_SubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus()

	var topics []string
	bus.SubscribeAll(func(e Event) {
		topics = append(topics, e.Topic)
	})

	bus.Publish(TopicOrderCreated, nil)
	bus.Publish(TopicOrderUpdated, nil)
	bus.Publish(TopicSessionExpire, nil)

	assert.Equal(t, []string{TopicOrderCreated, TopicOrderUpdated, TopicSessionExpire}, topics)
}

func TestBus_MultipleHandlersSameTopic(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(TopicOrderCreated, func(Event) { calls++ })
	bus.Subscribe(TopicOrderCreated, func(Event) { calls++ })

	bus.Publish(TopicOrderCreated, nil)

	assert.Equal(t, 2, calls)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()

	assert.NotPanics(t, func() {
		bus.Publish(TopicUserLogin, map[string]interface{}{"userId": "user_1"})
	})
}
