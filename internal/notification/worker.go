package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"health-reminder-backend/internal/metrics"
	"health-reminder-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the store the worker pool needs.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	CountSubscriptions(ctx context.Context) (int64, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Message is the JSON payload delivered to the service worker.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

const permissionCheckTimeout = 2 * time.Second

// WorkerPool delivers queued notifications to every registered browser.
// It implements the scheduling engine's notification sink.
type WorkerPool struct {
	size    int
	jobs    chan Message
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewWorkerPool creates a new worker pool with a bounded queue.
func NewWorkerPool(size, queueSize int, st SubscriptionStore, webpushOptions *webpush.Options, logger *zap.Logger, m *metrics.Metrics) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "push"))

	return &WorkerPool{
		size:    size,
		jobs:    make(chan Message, queueSize),
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		breaker: newBreaker(logger),
		logger:  logger,
		metrics: m,
	}
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "webpush",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("worker started", zap.Int("worker", id))
	for {
		select {
		case msg := <-wp.jobs:
			wp.sendToAll(ctx, msg)
		case <-ctx.Done():
			wp.logger.Debug("worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a message without blocking. It reports false when the queue
// is full and the message was dropped.
func (wp *WorkerPool) Dispatch(msg Message) bool {
	select {
	case wp.jobs <- msg:
		return true
	default:
		wp.logger.Warn("notification queue full, dropping message", zap.String("tag", msg.Tag))
		wp.metrics.RecordQueueDropped()
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Message {
	return wp.jobs
}

// PermissionGranted reports whether VAPID keys are configured and at least one
// browser registered a subscription, which it can only do after the user
// granted notification permission.
func (wp *WorkerPool) PermissionGranted() bool {
	if wp.webpush == nil || wp.webpush.VAPIDPrivateKey == "" || wp.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), permissionCheckTimeout)
	defer cancel()

	count, err := wp.store.CountSubscriptions(ctx)
	if err != nil {
		wp.logger.Error("failed to count push subscriptions", zap.Error(err))
		return false
	}
	return count > 0
}

// Notify queues a notification for every subscribed browser.
func (wp *WorkerPool) Notify(title, body, tag string) {
	wp.Dispatch(Message{Title: title, Body: body, Tag: tag})
}

// sendToAll fetches subscriptions and sends the message to each of them.
func (wp *WorkerPool) sendToAll(ctx context.Context, msg Message) {
	subscriptions, err := wp.store.ListSubscriptions(ctx)
	if err != nil {
		wp.logger.Error("failed to fetch subscriptions", zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		wp.logger.Error("failed to encode notification", zap.Error(err))
		return
	}

	wp.logger.Info("sending notification",
		zap.String("tag", msg.Tag),
		zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	opts := webpush.Options{}
	if wp.webpush != nil {
		opts = *wp.webpush
	}
	opts.Urgency = webpush.UrgencyHigh

	resp, err := wp.breaker.Execute(func() (*http.Response, error) {
		resp, err := wp.sender.Send(payload, wpSub, &opts)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, fmt.Errorf("push service returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		wp.metrics.RecordPush(false)
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		wp.metrics.RecordPush(false)
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	case resp.StatusCode >= http.StatusBadRequest:
		wp.metrics.RecordPush(false)
		wp.logger.Warn("push service rejected notification",
			zap.String("endpoint", sub.Endpoint),
			zap.Int("status", resp.StatusCode))
	default:
		wp.metrics.RecordPush(true)
	}
}
