package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	domrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/cache"
)

// RedisForecastStore implements PersistenceGateway on top of cache.Service.
// Forecasts live under conv:{id}:saved:{lowercase name}; a per-conversation
// index maps lowercase names to display names. Conversation ids are always
// part of the key, so different conversations can never collide; same-name
// writes within one conversation are last-write-wins.
//
// Values are stored as JSON strings so the store behaves identically over
// Redis and the in-memory cache.
type RedisForecastStore struct {
	cache cache.Service
}

func NewRedisForecastStore(c cache.Service) *RedisForecastStore {
	return &RedisForecastStore{cache: c}
}

func forecastKey(conversationID, name string) string {
	return fmt.Sprintf("conv:%s:saved:%s", conversationID, strings.ToLower(name))
}

func indexKey(conversationID string) string {
	return fmt.Sprintf("conv:%s:names", conversationID)
}

func (s *RedisForecastStore) Save(ctx context.Context, conversationID, name string, f models.ActiveForecast) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode forecast %q: %w", name, err)
	}
	if err := s.cache.Set(ctx, forecastKey(conversationID, name), string(b), 0); err != nil {
		return fmt.Errorf("save forecast %q: %w", name, err)
	}

	index, err := s.loadIndex(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("load name index: %w", err)
	}
	index[strings.ToLower(name)] = name
	ib, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode name index: %w", err)
	}
	if err := s.cache.Set(ctx, indexKey(conversationID), string(ib), 0); err != nil {
		return fmt.Errorf("update name index: %w", err)
	}
	return nil
}

func (s *RedisForecastStore) Load(ctx context.Context, conversationID, name string) (models.ActiveForecast, bool, error) {
	var raw string
	err := s.cache.Get(ctx, forecastKey(conversationID, name), &raw)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.ActiveForecast{}, false, nil
		}
		return models.ActiveForecast{}, false, fmt.Errorf("load forecast %q: %w", name, err)
	}
	var f models.ActiveForecast
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return models.ActiveForecast{}, false, fmt.Errorf("decode forecast %q: %w", name, err)
	}
	return f, true, nil
}

func (s *RedisForecastStore) List(ctx context.Context, conversationID string) ([]string, error) {
	index, err := s.loadIndex(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load name index: %w", err)
	}
	names := make([]string, 0, len(index))
	for _, display := range index {
		names = append(names, display)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisForecastStore) loadIndex(ctx context.Context, conversationID string) (map[string]string, error) {
	var raw string
	err := s.cache.Get(ctx, indexKey(conversationID), &raw)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	index := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &index); err != nil {
		return nil, err
	}
	return index, nil
}

var _ domrepo.PersistenceGateway = (*RedisForecastStore)(nil)
