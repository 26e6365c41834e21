package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"bilancio/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	// maxFailures is the failure count that opens the circuit
	maxFailures = 5

	// openTimeout is how long the circuit stays open before a retry
	openTimeout = 30 * time.Second

	// maxPublishAttempts bounds the retry loop for one publish
	maxPublishAttempts = 3

	publishTimeout = 5 * time.Second
)

// errBadMessage marks deliveries that cannot be decoded. They are
// rejected without requeueing.
var errBadMessage = errors.New("malformed message")

// Client connects to one events exchange with a reminder queue and a
// report queue bound to it. Publishing retries on connection errors
// with exponential backoff, and a circuit breaker keeps a dead broker
// from stalling request handlers.
type Client struct {
	url           string
	exchangeName  string
	reminderQueue string
	reportQueue   string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	// circuit breaker
	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient dials the broker and declares the exchange, both queues
// and their bindings.
func NewClient(url, exchangeName, reminderQueue, reportQueue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		url:           url,
		exchangeName:  exchangeName,
		reminderQueue: reminderQueue,
		reportQueue:   reportQueue,
		conn:          conn,
		channel:       channel,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

// setup declares the topology on the current channel. Callers own the
// channel lock when reconnecting.
func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{c.reminderQueue, c.reportQueue} {
		_, err = c.channel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		// Routing key matches the queue name on the direct exchange
		err = c.channel.QueueBind(queue, queue, c.exchangeName, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

// PublishReminder publishes one occurrence reminder
func (c *Client) PublishReminder(ctx context.Context, msg *ReminderMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, c.reminderQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published reminder",
		log.FieldComponent, log.ComponentAMQP,
		log.FieldUserID, msg.UserID,
		log.FieldItemID, msg.ItemID,
		log.FieldItemKind, msg.Kind,
		log.FieldQueue, c.reminderQueue)
	return nil
}

// PublishReportRequest publishes one monthly report request
func (c *Client) PublishReportRequest(ctx context.Context, msg *ReportRequest) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, c.reportQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published report request",
		log.FieldComponent, log.ComponentAMQP,
		log.FieldUserID, msg.UserID,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month,
		log.FieldQueue, c.reportQueue)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, refusing publish to %s", routingKey)
	}

	var lastErr error
	for attempt := 0; attempt < maxPublishAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(exponentialBackoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
			if err := c.reconnect(); err != nil {
				c.recordFailure()
				lastErr = err
				continue
			}
		}

		pctx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := c.channelRef().PublishWithContext(
			pctx,
			c.exchangeName, // exchange
			routingKey,     // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
		cancel()

		if err == nil {
			c.recordSuccess()
			return nil
		}

		c.recordFailure()
		lastErr = err
		if !isConnectionError(err) {
			return fmt.Errorf("publish message: %w", err)
		}
	}

	return fmt.Errorf("publish after %d attempts: %w", maxPublishAttempts, lastErr)
}

// ConsumeReminders delivers reminder messages to handler until ctx is
// cancelled. Handler errors requeue the delivery; undecodable payloads
// are dropped.
func (c *Client) ConsumeReminders(ctx context.Context, handler func(*ReminderMessage) error) error {
	return c.consume(ctx, c.reminderQueue, func(body []byte) error {
		msg, err := ReminderMessageFromJSON(body)
		if err != nil {
			return fmt.Errorf("%w: %v", errBadMessage, err)
		}
		return handler(msg)
	})
}

// ConsumeReportRequests delivers report requests to handler until ctx
// is cancelled, with the same ack semantics as ConsumeReminders.
func (c *Client) ConsumeReportRequests(ctx context.Context, handler func(*ReportRequest) error) error {
	return c.consume(ctx, c.reportQueue, func(body []byte) error {
		msg, err := ReportRequestFromJSON(body)
		if err != nil {
			return fmt.Errorf("%w: %v", errBadMessage, err)
		}
		return handler(msg)
	})
}

func (c *Client) consume(ctx context.Context, queue string, handle func([]byte) error) error {
	msgs, err := c.channelRef().Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming",
		log.FieldComponent, log.ComponentAMQP,
		log.FieldQueue, queue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption",
				log.FieldComponent, log.ComponentAMQP,
				log.FieldQueue, queue)
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			if err := handle(delivery.Body); err != nil {
				if errors.Is(err, errBadMessage) {
					slog.ErrorContext(ctx, "Discarding malformed message",
						log.FieldComponent, log.ComponentAMQP,
						log.FieldQueue, queue,
						log.FieldError, err)
					delivery.Nack(false, false) // reject and don't requeue
					continue
				}
				slog.ErrorContext(ctx, "Failed to handle message",
					log.FieldComponent, log.ComponentAMQP,
					log.FieldQueue, queue,
					log.FieldError, err)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

// reconnect drops the current connection and dials a fresh one,
// redeclaring the topology.
func (c *Client) reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("redial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("reopen channel: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return c.setup()
}

func (c *Client) channelRef() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	if time.Since(c.lastFailure) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.lastFailure = time.Now()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns the wait before retry number attempt,
// capped at 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	if attempt > 10 {
		attempt = 10
	}
	backoff := time.Second * time.Duration(1<<attempt)
	if backoff > 30*time.Second {
		return 30 * time.Second
	}
	return backoff
}

// isConnectionError reports whether err looks like a broken broker
// connection worth a reconnect, as opposed to a protocol error.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"closed network connection",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
