// Package queue contains the background consumer that listens to the
// booking.confirmed queue and writes one line per booking to a log file.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/picklepass/internal/logger"
)

// DefaultLogPath is where confirmed bookings are appended.
const DefaultLogPath = "logs/booking.log"

// StartBookingConsumer connects to RabbitMQ at url, declares the
// booking.confirmed queue (durable), and starts consuming messages.  Each
// message is appended to logPath in a single-line format.  The function runs
// a reconnect loop with exponential backoff and returns ctx.Err() once ctx
// is cancelled; processing errors are logged and the offending message is
// rejected so the consumer keeps running.
func StartBookingConsumer(ctx context.Context, url, logPath string) error {
    if logPath == "" {
        logPath = DefaultLogPath
    }
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            logger.Warn("BookingConsumer:Dial:Error", "error", err, "retry_in", backoff.String())
            if err := sleepCtx(ctx, backoff); err != nil {
                return err
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, logPath)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Warn("BookingConsumer:Loop:Ended", "error", err)
        if err := sleepCtx(ctx, 2*time.Second); err != nil {
            return err
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) error {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-t.C:
        return nil
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warn("BookingConsumer:Qos:Error", "error", err)
    }

    _, err = ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    logger.Info("BookingConsumer:Consume:Started", "queue", BookingConfirmedQueue, "log", logPath)

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := HandleMessage(d.Body, logPath); err != nil {
                logger.Error("BookingConsumer:Handle:Error", "error", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one delivery and appends its line to logPath.
func HandleMessage(body []byte, logPath string) error {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.BookingID == "" || ev.SessionID == "" {
        return errors.New("event without booking or session id")
    }
    if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as the single log line the consumer writes.
func FormatLine(ev BookingConfirmedEvent) string {
    return fmt.Sprintf("[%s] Booking confirmed | booking_id=%s | session_id=%s | facility=%q | session=%q | starts_at=%s | guest=%s | total=%d %s\n",
        ev.ConfirmedAt, ev.BookingID, ev.SessionID, ev.FacilitySlug, ev.SessionTitle, ev.StartsAt, ev.GuestFingerprint, ev.AmountCents, ev.Currency)
}
