// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/taibuivan/yomira-harvester/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
)

// Repository is the record store contract.
type Repository interface {
	// Exists reports whether a record with the given external identity is stored.
	Exists(ctx context.Context, identify string) (bool, error)

	// Create inserts the record with all of its episodes atomically.
	//
	// Returns [ErrAlreadyStored] if the identity is already present.
	Create(ctx context.Context, record *Record) error
}

// Gateway deduplicates items by external identity and stores new ones once.
//
// Known identities are cached in a bounded LRU. Only positive answers are
// cached since this system never deletes records.
type Gateway struct {
	repository Repository
	mapper     Mapper
	known      *lru.Cache[string, struct{}]
	metrics    *metrics.Metrics
}

// NewGateway creates a [Gateway] caching up to cacheSize known identities.
func NewGateway(repository Repository, mapper Mapper, cacheSize int, m *metrics.Metrics) (*Gateway, error) {
	known, err := lru.New[string, struct{}](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	return &Gateway{repository: repository, mapper: mapper, known: known, metrics: m}, nil
}

// Exists reports whether identify is already persisted.
func (gateway *Gateway) Exists(ctx context.Context, identify string) (bool, error) {
	if gateway.known.Contains(identify) {
		return true, nil
	}

	exists, err := gateway.repository.Exists(ctx, identify)
	if err != nil {
		return false, err
	}
	if exists {
		gateway.known.Add(identify, struct{}{})
	}
	return exists, nil
}

// Store maps and persists an assembled item. It must follow an [Gateway.Exists]
// call that returned false for the same identity. A concurrent insert of the
// same identity yields [ErrAlreadyStored] and leaves the store unchanged.
func (gateway *Gateway) Store(ctx context.Context, assembled *Assembled) (*Record, error) {
	record := gateway.mapper.Map(assembled)

	err := gateway.repository.Create(ctx, record)
	if errors.Is(err, ErrAlreadyStored) {
		gateway.known.Add(record.Identify, struct{}{})
		return nil, ErrAlreadyStored
	}
	if err != nil {
		return nil, err
	}

	gateway.known.Add(record.Identify, struct{}{})
	gateway.metrics.IncItem("stored")

	ctxutil.GetLogger(ctx).Info("item_stored",
		slog.String("comic_id", record.Identify),
		slog.String("title", record.Title),
		slog.Int("episodes", len(record.Episodes)),
	)

	return record, nil
}
