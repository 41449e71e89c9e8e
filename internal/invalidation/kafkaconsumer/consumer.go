// Package kafkaconsumer applies zone change events from Kafka to the zone
// payload cache.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	obs "github.com/mohammed-shakir/airspace-overlay/internal/core/observability"
	"github.com/mohammed-shakir/airspace-overlay/internal/invalidation"
	mylog "github.com/mohammed-shakir/airspace-overlay/internal/logger"
)

// Invalidator drops cached zone payloads overlapping a WGS-84 rect.
type Invalidator interface {
	Invalidate(ctx context.Context, changed model.BoundingRect) (int, error)
}

type Consumer struct {
	cfg      Config
	logger   *slog.Logger
	target   Invalidator
	revs     *revisionDedupe
	assigned atomic.Bool
	assignMu sync.RWMutex
	assign   map[int32]struct{}
}

func New(cfg Config, logger *slog.Logger, target Invalidator) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		target: target,
		revs:   newRevisionDedupe(cfg.DedupeSize),
		assign: map[int32]struct{}{},
	}
}

// Start blocks consuming the topic until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.target == nil {
		return errors.New("kafkaconsumer: missing invalidation target")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	ctx = mylog.WithComponent(ctx, "kafka_consumer")
	handler := &groupHandler{setup: c.onAssign, cleanup: c.onRevoke, process: c.ProcessOne}

	c.logger.InfoContext(ctx, "kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
			c.logger.ErrorContext(ctx, "kafka consumer error", "err", err, "topic", c.cfg.Topic)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			c.logger.Info("kafka invalidation consumer shutting down")
			return nil
		}
	}
}

func (c *Consumer) onAssign(sess sarama.ConsumerGroupSession) {
	c.assignMu.Lock()
	defer c.assignMu.Unlock()
	c.assign = map[int32]struct{}{}
	for _, parts := range sess.Claims() {
		for _, p := range parts {
			c.assign[p] = struct{}{}
		}
	}
	c.assigned.Store(true)
}

func (c *Consumer) onRevoke(sarama.ConsumerGroupSession) {
	c.assignMu.Lock()
	defer c.assignMu.Unlock()
	c.assign = map[int32]struct{}{}
	c.assigned.Store(false)
}

// Readiness reports whether the group currently owns partitions.
func (c *Consumer) Readiness() (ready bool, partitions []int32) {
	if !c.assigned.Load() {
		return false, nil
	}
	c.assignMu.RLock()
	defer c.assignMu.RUnlock()
	for p := range c.assign {
		partitions = append(partitions, p)
	}
	return true, partitions
}

// ProcessOne applies a single event. Malformed and stale events are skipped
// without error; only cache failures are returned so the offset is not marked.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()
	log := c.logger.With("topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncInvalidation("unknown", "decode_error")
		log.WarnContext(ctx, "skipping undecodable invalidation event", "err", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncInvalidation(ev.Op, "invalid")
		log.WarnContext(ctx, "skipping invalid invalidation event", "err", err)
		return nil
	}

	zone := ev.DedupeKey()
	if zone != "" && ev.Revision > 0 && c.revs.stale(zone, ev.Revision) {
		obs.IncInvalidation(ev.Op, "stale")
		log.DebugContext(ctx, "skipping stale zone revision", "zone_id", zone, "revision", ev.Revision)
		return nil
	}

	rect, err := ev.Rect()
	if err != nil {
		obs.IncInvalidation(ev.Op, "invalid")
		log.WarnContext(ctx, "skipping invalidation event without area", "err", err)
		return nil
	}

	n, err := c.target.Invalidate(ctx, rect)
	obs.ObserveUpstreamLatency("invalidation_apply", time.Since(start).Seconds())
	if err != nil {
		obs.IncInvalidation(ev.Op, "error")
		log.ErrorContext(ctx, "zone invalidation failed", "err", err, "zone_id", zone)
		return fmt.Errorf("invalidate: %w", err)
	}
	if zone != "" && ev.Revision > 0 {
		c.revs.record(zone, ev.Revision)
	}
	obs.IncInvalidation(ev.Op, "ok")
	log.InfoContext(ctx, "invalidated zone cache",
		"op", ev.Op, "zone_id", zone, "revision", ev.Revision, "keys", n)
	return nil
}
