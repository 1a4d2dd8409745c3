// Package watch provides the live-subscription layer: repositories publish
// change notifications after every mutation and open subscriptions re-query
// their scope to deliver fresh snapshots to consumers.
package watch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/impilo/fieldreport/internal/scope"
)

// Collection names used across the system.
const (
	CollectionActivities  = "activities"
	CollectionAttachments = "attachments"
	CollectionUsers       = "users"
)

// Event describes one collection change. District and UserID identify the
// affected record's owner so subscriptions can filter by scope.
type Event struct {
	Collection string    `json:"collection"`
	District   string    `json:"district,omitempty"`
	UserID     uuid.UUID `json:"userId"`
}

// Publisher is the mutation-side interface services depend on.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// NopPublisher discards events. Useful in tests and one-shot tools.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) {}

type registration struct {
	ev chan Event
	s  scope.Scope
}

// Hub fans change events out to local subscriptions. With a redis client it
// also relays events across instances via pub/sub; Run must be started for
// any delivery in that mode.
type Hub struct {
	mu     sync.Mutex
	nextID int
	regs   map[string]map[int]*registration
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewHub creates a hub. rdb may be nil for single-process setups and tests.
func NewHub(rdb *redis.Client, logger zerolog.Logger) *Hub {
	return &Hub{regs: make(map[string]map[int]*registration), rdb: rdb, logger: logger}
}

// Publish notifies subscribers of a change. When redis is configured the
// event round-trips through pub/sub so every instance (including this one)
// receives it; otherwise it is fanned out in-process.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if h.rdb == nil {
		h.fanout(ev)
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Msg("watch: marshal event")
		return
	}
	if err := h.rdb.Publish(ctx, channelFor(ev.Collection), payload).Err(); err != nil {
		h.logger.Error().Err(err).Str("collection", ev.Collection).Msg("watch: publish")
	}
}

// Run consumes the redis relay until ctx is cancelled. No-op without redis.
func (h *Hub) Run(ctx context.Context) error {
	if h.rdb == nil {
		<-ctx.Done()
		return nil
	}

	sub := h.rdb.PSubscribe(ctx, "watch:*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.logger.Warn().Err(err).Msg("watch: bad relay payload")
				continue
			}
			h.fanout(ev)
		}
	}
}

func channelFor(collection string) string {
	return "watch:" + collection
}

func (h *Hub) fanout(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, reg := range h.regs[ev.Collection] {
		if !reg.s.Matches(ev.UserID, ev.District) {
			continue
		}
		select {
		case reg.ev <- ev:
		default:
			// Subscriber already has a pending wake-up; snapshots are
			// whole-result-set so coalescing is safe.
		}
	}
}

func (h *Hub) register(collection string, s scope.Scope) (int, *registration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	reg := &registration{ev: make(chan Event, 1), s: s}
	if h.regs[collection] == nil {
		h.regs[collection] = make(map[int]*registration)
	}
	h.regs[collection][id] = reg
	return id, reg
}

func (h *Hub) unregister(collection string, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.regs[collection], id)
}
