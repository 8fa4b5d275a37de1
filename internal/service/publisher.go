// Package service provides the outbound side of the event pipeline.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/picklepass/internal/logger"
    q "github.com/iliyamo/picklepass/internal/queue"
)

// BookingPublisher announces confirmed bookings.
type BookingPublisher interface {
    PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error
}

// DefaultDialTimeout bounds the broker connect so an unreachable broker
// cannot hold up the confirm response for long.
const DefaultDialTimeout = 2 * time.Second

// AMQPPublisher publishes to RabbitMQ, opening a connection per message.
type AMQPPublisher struct {
    URL         string
    DialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
    return &AMQPPublisher{URL: url, DialTimeout: DefaultDialTimeout}
}

// dial connects with a timeout that is the shorter of DialTimeout and
// whatever remains of ctx.
func (p *AMQPPublisher) dial(ctx context.Context) (*amqp.Connection, error) {
    timeout := p.DialTimeout
    if timeout <= 0 {
        timeout = DefaultDialTimeout
    }
    if dl, ok := ctx.Deadline(); ok {
        if left := time.Until(dl); left < timeout {
            timeout = left
        }
    }
    if timeout <= 0 {
        return nil, context.DeadlineExceeded
    }
    return amqp.DialConfig(p.URL, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
}

// PublishBookingConfirmed publishes event to the booking.confirmed queue as
// a persistent message.  It never panics; any error is logged and returned.
func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error {
    conn, err := p.dial(ctx)
    if err != nil {
        logger.Warn("AMQPPublisher:Dial:Error", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logger.Warn("AMQPPublisher:Channel:Error", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.BookingConfirmedQueue, // name
        true,                    // durable
        false,                   // autoDelete
        false,                   // exclusive
        false,                   // noWait
        nil,                     // args
    ); err != nil {
        logger.Warn("AMQPPublisher:QueueDeclare:Error", "error", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        logger.Warn("AMQPPublisher:Marshal:Error", "error", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    event.BookingID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                      // default exchange
        q.BookingConfirmedQueue, // routing key = queue name
        false,                   // mandatory
        false,                   // immediate
        pub,
    ); err != nil {
        logger.Warn("AMQPPublisher:Publish:Error", "error", err)
        return err
    }
    logger.Debug("AMQPPublisher:Publish:Success", "booking_id", event.BookingID)
    return nil
}

// NoopPublisher drops every event.  It is used when EVENTS_ENABLED is off.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingConfirmed(context.Context, q.BookingConfirmedEvent) error {
    return nil
}
