package amqp

import (
	"context"
	"fmt"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// Exchange names a RabbitMQ exchange.
type Exchange string

// Queue names a RabbitMQ queue.
type Queue string

// RoutingKey routes a publication to its queue.
type RoutingKey string

const (
	// ExchangeEvents fans order events out to every bound consumer.
	ExchangeEvents Exchange = "fulfillment.events"
	// ExchangeAssignments carries assignment work for the queue consumer.
	ExchangeAssignments Exchange = "fulfillment.assignments"
	// ExchangeRetry receives nacked assignments and holds them for the
	// redelivery delay.
	ExchangeRetry Exchange = "fulfillment.retry"
	// ExchangeDLQ collects assignments that exhausted their retries.
	ExchangeDLQ Exchange = "fulfillment.dlq"
)

const (
	QueueEventsNotifications Queue = "events.notifications"
	QueueAssignments         Queue = "assignments.pending"
	QueueAssignmentsRetry    Queue = "assignments.retry"
	QueueAssignmentsDLQ      Queue = "dlq.assignments"
)

const (
	RoutingKeyAssignment RoutingKey = "assignment"
)

// SetupTopology declares the exchanges, queues and bindings this service
// relies on. Declarations are idempotent; every process runs this at boot.
//
// Redelivery works through dead-lettering: the consumer nacks an assignment
// without requeue, the pending queue dead-letters it to the retry queue,
// and the retry queue's message TTL dead-letters it back to the pending
// queue after retryDelay. The consumer checks the x-death count against
// its retry budget and parks exhausted messages on the DLQ.
func SetupTopology(ctx context.Context, conn *Connection, retryDelay time.Duration) error {
	return conn.WithChannel(ctx, func(ch *amqp091.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch, retryDelay); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

func declareExchanges(ch *amqp091.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeEvents, "fanout"},
		{ExchangeAssignments, "direct"},
		{ExchangeRetry, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name),
			ex.kind,
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

func declareQueues(ch *amqp091.Channel, retryDelay time.Duration) error {
	queues := []struct {
		name Queue
		args amqp091.Table
	}{
		{QueueEventsNotifications, nil},
		{QueueAssignments, amqp091.Table{
			"x-dead-letter-exchange":    string(ExchangeRetry),
			"x-dead-letter-routing-key": string(RoutingKeyAssignment),
		}},
		{QueueAssignmentsRetry, amqp091.Table{
			"x-message-ttl":             retryDelay.Milliseconds(),
			"x-dead-letter-exchange":    string(ExchangeAssignments),
			"x-dead-letter-routing-key": string(RoutingKeyAssignment),
		}},
		{QueueAssignmentsDLQ, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name),
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			q.args,
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

func bindQueues(ch *amqp091.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueEventsNotifications, "", ExchangeEvents},
		{QueueAssignments, RoutingKeyAssignment, ExchangeAssignments},
		{QueueAssignmentsRetry, RoutingKeyAssignment, ExchangeRetry},
		{QueueAssignmentsDLQ, RoutingKeyAssignment, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),
			string(b.routingKey),
			string(b.exchange),
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
