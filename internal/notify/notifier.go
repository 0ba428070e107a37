// Package notify pushes remote schedule changes back to the caller.
// The contract is refetch-and-callback: any event on a user's channel
// triggers a full schedule reload, with no event-type discrimination
// and no ordering guarantee beyond at least one refetch per burst.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AkshayAD/Cook-Commander/internal/logger"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/schedule"
	"github.com/AkshayAD/Cook-Commander/internal/session"
)

// Notifier subscribes a caller to schedule changes for its own rows.
type Notifier interface {
	// Subscribe registers onChange to receive the complete refreshed
	// schedule after every remote change. Offline sessions get an inert
	// handle and onChange never fires.
	Subscribe(ctx context.Context, sess session.Session, onChange func(mealplan.Schedule)) (*Subscription, error)
}

// Subscription is the cancel handle returned by Subscribe. Unsubscribe
// is idempotent and safe to call any number of times.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery. Safe on an inert handle.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

func channelFor(userID string) string {
	return "schedule:" + userID
}

// RedisNotifier delivers change notifications over redis pub/sub. It
// is also the Publisher used by the remote schedule repository.
type RedisNotifier struct {
	rdb      *goredis.Client
	resolver *repository.Resolver
	sched    schedule.Repository
	log      *logger.Logger
}

// NewRedis connects to redis and builds the notifier. The schedule
// repository is attached afterwards with BindSchedule, since the
// notifier is also the repository's publisher.
func NewRedis(addr string, resolver *repository.Resolver, log *logger.Logger) (*RedisNotifier, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisNotifier{
		rdb:      rdb,
		resolver: resolver,
		log:      log.With("service", "RedisNotifier"),
	}, nil
}

// BindSchedule sets the repository used to refetch after a change
// event. Must be called before Subscribe.
func (n *RedisNotifier) BindSchedule(sched schedule.Repository) {
	n.sched = sched
}

// SchedulePublish announces that a user's schedule changed. The payload
// carries no detail: subscribers refetch regardless.
func (n *RedisNotifier) SchedulePublish(ctx context.Context, userID string) error {
	return n.rdb.Publish(ctx, channelFor(userID), "changed").Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context, sess session.Session, onChange func(mealplan.Schedule)) (*Subscription, error) {
	if n.resolver.Offline(sess) {
		return &Subscription{}, nil
	}
	if n.sched == nil {
		return nil, fmt.Errorf("notifier has no schedule repository bound")
	}

	sub := n.rdb.Subscribe(ctx, channelFor(sess.UserID))
	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	go n.forward(subCtx, sub.Channel(), func() { _ = sub.Close() }, sess, onChange)

	return &Subscription{cancel: cancel}, nil
}

// forward pumps change events into onChange until the context ends or
// the channel closes. The subscription is closed on every exit path,
// including caller-side context cancellation.
func (n *RedisNotifier) forward(ctx context.Context, msgs <-chan *goredis.Message, closeSub func(), sess session.Session, onChange func(mealplan.Schedule)) {
	defer closeSub()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok || m == nil {
				return
			}
			// Refetch failures are advisory: skip the burst and wait
			// for the next one.
			sched, err := n.sched.All(ctx, sess)
			if err != nil {
				n.log.Warn("Failed to refetch schedule after change", "error", err)
				continue
			}
			onChange(sched)
		}
	}
}

// Close shuts down the redis connection.
func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}

// NoopNotifier is used when realtime push is not configured. Every
// subscription is inert.
type NoopNotifier struct{}

// NewNoop builds the inert notifier.
func NewNoop() *NoopNotifier {
	return &NoopNotifier{}
}

func (*NoopNotifier) Subscribe(context.Context, session.Session, func(mealplan.Schedule)) (*Subscription, error) {
	return &Subscription{}, nil
}
