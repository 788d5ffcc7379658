// Package presenter keeps the live message of every poll and the latest view shown in it.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/bounceland/internal/adapters/mq/worker"
	"github.com/okian/bounceland/internal/adapters/repository"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/logger"
	"github.com/okian/bounceland/pkg/metrics"
)

// ErrUnknownPoll is returned for polls that are not served.
var ErrUnknownPoll = errors.New("unknown poll")

var messageKeys = map[model.Poll]string{
	model.PollBounceland: repository.KeyBouncelandMessage,
	model.PollMeal:       repository.KeyMealMessage,
}

// Option applies a configuration option to Live.
type Option func(*Live)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(lv *Live) {
		if l != nil {
			lv.logger = l
		}
	}
}

// WithIDGenerator replaces the message id generator.
func WithIDGenerator(gen func() string) Option {
	return func(lv *Live) {
		if gen != nil {
			lv.newID = gen
		}
	}
}

// WithDestination sets the chat thread poll is shown in.
func WithDestination(poll model.Poll, chatID, threadID int64) Option {
	return func(lv *Live) {
		lv.destinations[poll] = model.Destination{ChatID: chatID, ThreadID: threadID}
	}
}

// Live is the in-process presentation layer. Posting creates a new message
// id; publishing edits the current message of a poll.
type Live struct {
	store        repository.DocumentStore
	logger       logger.Logger
	newID        func() string
	destinations map[model.Poll]model.Destination

	mu     sync.RWMutex
	ids    map[model.Poll]string
	latest map[model.Poll]model.Update
}

// NewLive creates a presenter persisting message ids in store.
func NewLive(store repository.DocumentStore, opts ...Option) *Live {
	l := &Live{
		store:        store,
		newID:        uuid.NewString,
		destinations: map[model.Poll]model.Destination{},
		ids:          map[model.Poll]string{},
		latest:       map[model.Poll]model.Update{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("presenter")
	}
	return l
}

// Restore loads persisted message ids. Unreadable ids are ignored.
func (l *Live) Restore(ctx context.Context) error {
	for poll, key := range messageKeys {
		var ref model.MessageRef
		found, err := l.store.Load(ctx, key, &ref)
		if errors.Is(err, repository.ErrCorrupt) {
			l.logger.Warn(ctx, "ignoring unreadable message id", logger.String("poll", string(poll)), logger.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s message: %w", poll, err)
		}
		if found && ref.MessageID != "" {
			l.mu.Lock()
			l.ids[poll] = ref.MessageID
			l.mu.Unlock()
		}
	}
	return nil
}

// Post shows u as a new message and makes it the live message of its poll.
func (l *Live) Post(ctx context.Context, u model.Update) (string, error) {
	key, ok := messageKeys[u.Poll]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPoll, u.Poll)
	}
	id := l.newID()
	if err := l.store.Save(ctx, key, model.MessageRef{SchemaVersion: model.SchemaVersion, MessageID: id}); err != nil {
		return "", fmt.Errorf("save %s message id: %w", u.Poll, err)
	}

	u.MessageID = id
	u.Destination = l.destinations[u.Poll]
	l.mu.Lock()
	l.ids[u.Poll] = id
	l.latest[u.Poll] = u
	l.mu.Unlock()

	metrics.RecordPost(string(u.Poll))
	l.logger.Info(ctx, "poll posted", logger.String("poll", string(u.Poll)), logger.String("message_id", id))
	return id, nil
}

// Publish implements worker.Presenter by editing the live message of u.Poll.
func (l *Live) Publish(_ context.Context, u model.Update) error {
	if _, ok := messageKeys[u.Poll]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPoll, u.Poll)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.ids[u.Poll]
	if !ok {
		return worker.ErrNotPosted
	}
	u.MessageID = id
	u.Destination = l.destinations[u.Poll]
	l.latest[u.Poll] = u
	return nil
}

// Latest returns the view currently shown for poll.
func (l *Live) Latest(poll model.Poll) (model.Update, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u, ok := l.latest[poll]
	if !ok {
		if id, posted := l.ids[poll]; posted {
			return model.Update{Poll: poll, MessageID: id, Destination: l.destinations[poll]}, true
		}
	}
	return u, ok
}

// MessageID returns the live message id of poll.
func (l *Live) MessageID(poll model.Poll) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.ids[poll]
	return id, ok
}
