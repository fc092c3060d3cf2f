package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/felixgeelhaar/reflex-go/domain/episode"
)

// episodeEntry holds a deep copy of an episode for storage.
type episodeEntry struct {
	data []byte
}

// EpisodeStore is an in-memory implementation of episode.Store.
type EpisodeStore struct {
	episodes map[string]*episodeEntry
	mu       sync.RWMutex
}

// NewEpisodeStore creates a new in-memory episode store.
func NewEpisodeStore() *EpisodeStore {
	return &EpisodeStore{
		episodes: make(map[string]*episodeEntry),
	}
}

// Save persists a new episode.
func (s *EpisodeStore) Save(ctx context.Context, ep *episode.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ep == nil || ep.ID == "" {
		return episode.ErrInvalidEpisode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.episodes[ep.ID]; exists {
		return episode.ErrEpisodeExists
	}

	data, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	s.episodes[ep.ID] = &episodeEntry{data: data}
	return nil
}

// Get retrieves an episode by ID.
func (s *EpisodeStore) Get(ctx context.Context, id string) (*episode.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, episode.ErrInvalidEpisode
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.episodes[id]
	if !ok {
		return nil, episode.ErrEpisodeNotFound
	}

	var ep episode.Episode
	if err := json.Unmarshal(entry.data, &ep); err != nil {
		return nil, err
	}

	return &ep, nil
}

// Update updates an existing episode.
func (s *EpisodeStore) Update(ctx context.Context, ep *episode.Episode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ep == nil || ep.ID == "" {
		return episode.ErrInvalidEpisode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.episodes[ep.ID]; !exists {
		return episode.ErrEpisodeNotFound
	}

	data, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	s.episodes[ep.ID] = &episodeEntry{data: data}
	return nil
}

// Delete removes an episode by ID.
func (s *EpisodeStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if id == "" {
		return episode.ErrInvalidEpisode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.episodes[id]; !exists {
		return episode.ErrEpisodeNotFound
	}

	delete(s.episodes, id)
	return nil
}

// List returns episodes matching the filter.
func (s *EpisodeStore) List(ctx context.Context, filter episode.ListFilter) ([]*episode.Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*episode.Episode

	for _, entry := range s.episodes {
		var ep episode.Episode
		if err := json.Unmarshal(entry.data, &ep); err != nil {
			continue
		}

		if !matchesFilter(&ep, filter) {
			continue
		}

		result = append(result, &ep)
	}

	sortEpisodes(result, filter.OrderBy, filter.Descending)

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*episode.Episode{}, nil
		}
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the number of episodes matching the filter.
func (s *EpisodeStore) Count(ctx context.Context, filter episode.ListFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64

	for _, entry := range s.episodes {
		var ep episode.Episode
		if err := json.Unmarshal(entry.data, &ep); err != nil {
			continue
		}

		if matchesFilter(&ep, filter) {
			count++
		}
	}

	return count, nil
}

// matchesFilter checks if an episode matches the filter criteria.
func matchesFilter(ep *episode.Episode, filter episode.ListFilter) bool {
	if len(filter.Status) > 0 {
		found := false
		for _, status := range filter.Status {
			if ep.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.World != "" && ep.World != filter.World {
		return false
	}

	if !filter.FromTime.IsZero() && ep.StartTime.Before(filter.FromTime) {
		return false
	}

	if !filter.ToTime.IsZero() && ep.StartTime.After(filter.ToTime) {
		return false
	}

	return true
}

// sortEpisodes sorts episodes by the specified field.
func sortEpisodes(eps []*episode.Episode, orderBy episode.OrderBy, descending bool) {
	sort.Slice(eps, func(i, j int) bool {
		var less bool

		switch orderBy {
		case episode.OrderByStartTime:
			less = eps[i].StartTime.Before(eps[j].StartTime)
		case episode.OrderByEndTime:
			less = eps[i].EndTime.Before(eps[j].EndTime)
		case episode.OrderByID:
			less = eps[i].ID < eps[j].ID
		case episode.OrderByStatus:
			less = string(eps[i].Status) < string(eps[j].Status)
		default:
			less = eps[i].StartTime.Before(eps[j].StartTime)
		}

		if descending {
			return !less
		}
		return less
	})
}

// Clear removes all episodes from the store.
func (s *EpisodeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodes = make(map[string]*episodeEntry)
}
