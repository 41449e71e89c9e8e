// Package zones serves restricted-area lookups for viewports and points,
// backed by a tiered payload cache in front of the backend API.
package zones

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/airspace-overlay/internal/area"
	"github.com/mohammed-shakir/airspace-overlay/internal/cache"
	"github.com/mohammed-shakir/airspace-overlay/internal/cache/keys"
	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/observability"
	"github.com/mohammed-shakir/airspace-overlay/internal/graphics"
	mylog "github.com/mohammed-shakir/airspace-overlay/internal/logger"
	"github.com/mohammed-shakir/airspace-overlay/internal/mapper"
)

// ErrBadPayload marks a backend response or cached entry that carried no
// usable area list.
var ErrBadPayload = errors.New("bad backend payload")

// MaxH3Res bounds the cache resolution. Invalidation polyfills a rect grown
// by 90 km, which at finer resolutions is hundreds of thousands of cells.
const MaxH3Res = 7

type Fetcher interface {
	FetchAreas(ctx context.Context, q model.AreaQuery) ([]byte, error)
}

// Tier is one cache layer, consulted in order.
type Tier struct {
	Name  string
	Cache cache.Interface
}

type Options struct {
	TTL       time.Duration
	OpTimeout time.Duration
	H3Res     int
}

type Service struct {
	logger *slog.Logger
	fetch  Fetcher
	mapper mapper.Interface
	tiers  []Tier
	opts   Options
}

func New(logger *slog.Logger, fetch Fetcher, m mapper.Interface, opts Options, tiers ...Tier) *Service {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	if opts.H3Res > MaxH3Res {
		logger.Warn("zone cache resolution capped", "requested", opts.H3Res, "max", MaxH3Res)
		opts.H3Res = MaxH3Res
	}
	return &Service{logger: logger, fetch: fetch, mapper: m, tiers: tiers, opts: opts}
}

// Areas returns the parsed areas for a WGS-84 query circle. The center is
// snapped to its H3 cell centroid and the radius, grown by the snap distance,
// to a 10 km bucket so nearby queries share one cache entry. Below the 80 km
// cap the snapped circle covers the requested one.
func (s *Service) Areas(ctx context.Context, q model.AreaQuery) ([]area.Area, error) {
	cell, err := s.mapper.CellForPoint(q.Center, s.opts.H3Res)
	if err != nil {
		s.logger.WarnContext(ctx, "zone cell lookup failed, bypassing cache", "err", err)
		q.Radius = float64(BucketRadius(q.Radius))
		return s.fetchAndParse(ctx, q)
	}
	shift := 0.0
	if c, err := s.mapper.CellCenter(cell); err == nil {
		shift = coord.HaversineMeters(q.Center.Latitude, q.Center.Longitude, c.Latitude, c.Longitude)
		q.Center = c
	}
	bucket := BucketRadius(q.Radius + shift)
	q.Radius = float64(bucket)
	key := keys.ZoneKey(s.opts.H3Res, cell, bucket)
	ctx = mylog.WithZoneKey(ctx, key)

	for i, t := range s.tiers {
		raw, ok := s.get(ctx, t, key)
		if !ok {
			continue
		}
		s.backfill(ctx, s.tiers[:i], key, raw)
		s.logger.DebugContext(mylog.WithCacheTier(ctx, t.Name), "zones served from cache")
		return parsePayload(raw)
	}

	payload, err := s.fetch.FetchAreas(ctx, q)
	if err != nil {
		observability.IncZoneCache("backend", "error")
		return nil, fmt.Errorf("fetch areas: %w", err)
	}
	raw, err := area.ExtractList(payload)
	if err != nil {
		observability.IncZoneCache("backend", "error")
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	observability.IncZoneCache("backend", "fetched")
	s.backfill(ctx, s.tiers, key, raw)
	s.logger.DebugContext(mylog.WithCacheTier(ctx, "backend"), "zones fetched", "bytes", len(raw))
	return parsePayload(raw)
}

func parsePayload(raw []byte) ([]area.Area, error) {
	areas, err := area.ParseList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return areas, nil
}

func (s *Service) fetchAndParse(ctx context.Context, q model.AreaQuery) ([]area.Area, error) {
	payload, err := s.fetch.FetchAreas(ctx, q)
	if err != nil {
		observability.IncZoneCache("backend", "error")
		return nil, fmt.Errorf("fetch areas: %w", err)
	}
	observability.IncZoneCache("backend", "fetched")
	return parsePayload(payload)
}

func (s *Service) get(ctx context.Context, t Tier, key string) ([]byte, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()
	got, err := t.Cache.MGet(cctx, []string{key})
	if err != nil {
		observability.IncZoneCache(t.Name, "error")
		s.logger.WarnContext(ctx, "zone cache read failed", "tier", t.Name, "err", err)
		return nil, false
	}
	raw, ok := got[key]
	if !ok {
		observability.IncZoneCache(t.Name, "miss")
		return nil, false
	}
	observability.IncZoneCache(t.Name, "hit")
	return raw, true
}

// backfill writes are best effort.
func (s *Service) backfill(ctx context.Context, tiers []Tier, key string, raw []byte) {
	for _, t := range tiers {
		cctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
		if err := t.Cache.Set(cctx, key, raw, s.opts.TTL); err != nil {
			s.logger.WarnContext(ctx, "zone cache write failed", "tier", t.Name, "err", err)
		}
		cancel()
	}
}

// Render returns GCJ-02 render shapes for a GCJ-02 viewport.
func (s *Service) Render(ctx context.Context, r model.Region) ([]model.RenderShape, error) {
	areas, err := s.Areas(ctx, QueryForRegion(r))
	if err != nil {
		return nil, err
	}
	return graphics.BuildAreaGraphics(areas), nil
}

// StatusAt classifies a GCJ-02 point against the zones around it.
func (s *Service) StatusAt(ctx context.Context, p model.GeoPoint) (Status, error) {
	q := QueryForPoint(p)
	areas, err := s.Areas(ctx, q)
	if err != nil {
		return Status{}, err
	}
	return StatusAt(areas, coord.Gcj02PointToWgs84(p)), nil
}

// Invalidate drops every cached entry whose query circle could overlap the
// WGS-84 rect and returns the number of keys removed from each tier.
func (s *Service) Invalidate(ctx context.Context, changed model.BoundingRect) (int, error) {
	// cached circles are centered on cell centroids with at most the capped radius
	reach := expandRect(changed, coord.MaxQueryRadius+radiusStep)
	cells, err := s.mapper.CellsForRect(reach, s.opts.H3Res)
	if err != nil {
		return 0, fmt.Errorf("cells for invalidation: %w", err)
	}
	ks := make([]string, 0, len(cells)*len(RadiusBuckets))
	for _, c := range cells {
		for _, b := range RadiusBuckets {
			ks = append(ks, keys.ZoneKey(s.opts.H3Res, c, b))
		}
	}
	s.logger.DebugContext(ctx, "invalidating zone keys", "rect", changed.String(), "cells", len(cells), "keys", len(ks))
	var firstErr error
	for _, t := range s.tiers {
		if err := t.Cache.Del(ctx, ks...); err != nil {
			s.logger.ErrorContext(ctx, "zone invalidation failed", "tier", t.Name, "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("invalidate %s: %w", t.Name, err)
			}
		}
	}
	return len(ks), firstErr
}
