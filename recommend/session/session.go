// Package session keeps the outfit sets last returned to each client so that a
// later quick purchase can refer to them by rank.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stylematch/recommend/models"
)

// Session 会话. LastSets is replaced wholesale by every recommendation.
type Session struct {
	ID        string                `json:"id"`
	LastSets  []models.FormattedSet `json:"last_sets"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// New starts an empty session. An empty id gets a fresh uuid.
func New(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	return &Session{ID: id}
}

func (s *Session) Replace(sets []models.FormattedSet) {
	s.LastSets = sets
	s.UpdatedAt = time.Now()
}

// Set returns the last-returned set with the given rank.
func (s *Session) Set(rank int) (models.FormattedSet, error) {
	for _, set := range s.LastSets {
		if set.Rank == rank {
			return set, nil
		}
	}
	return models.FormattedSet{}, fmt.Errorf("%w: rank %d in session %s", models.ErrSetNotFound, rank, s.ID)
}

// Store persists sessions between requests. Get fails with
// models.ErrSessionNotFound for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Ping(ctx context.Context) error
	Name() string
}

// Load returns the stored session, or a new one when id is empty or unknown.
func Load(ctx context.Context, store Store, id string) (*Session, error) {
	if id == "" {
		return New(""), nil
	}
	s, err := store.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, models.ErrSessionNotFound) {
		return New(id), nil
	}
	return nil, err
}
