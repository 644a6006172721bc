package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/scoutcal/scout/internal/errors"
)

// Proposal is a pending event creation that was held back because it
// conflicts with the user's existing schedule. It is an addressable
// resource: the chat response carries its id and the user confirms or
// declines it explicitly, with no server-side session state.
type Proposal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Event     Event     `json:"event"`
	Warning   string    `json:"warning"`
	CreatedAt time.Time `json:"created_at"`
}

const proposalTTL = time.Hour

// ProposalStore keeps pending conflict proposals in Redis with a bounded
// lifetime.
type ProposalStore struct {
	rdb *redis.Client
}

// NewProposalStore creates a new proposal store
func NewProposalStore(rdb *redis.Client) *ProposalStore {
	return &ProposalStore{rdb: rdb}
}

func proposalKey(userID, id string) string {
	return fmt.Sprintf("scout:proposal:%s:%s", userID, id)
}

// Put stores a proposal and returns its assigned id
func (s *ProposalStore) Put(ctx context.Context, userID string, event Event, warning string) (string, error) {
	p := Proposal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Event:     event,
		Warning:   warning,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal proposal")
	}

	if err := s.rdb.Set(ctx, proposalKey(userID, p.ID), payload, proposalTTL).Err(); err != nil {
		return "", errors.Wrap(err, "failed to store proposal")
	}
	return p.ID, nil
}

// Get fetches a proposal by id, scoped to its owner
func (s *ProposalStore) Get(ctx context.Context, userID, id string) (*Proposal, error) {
	payload, err := s.rdb.Get(ctx, proposalKey(userID, id)).Bytes()
	if err == redis.Nil {
		return nil, errors.ErrProposalNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load proposal")
	}

	var p Proposal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal proposal")
	}
	return &p, nil
}

// Remove deletes a proposal once it has been confirmed or declined
func (s *ProposalStore) Remove(ctx context.Context, userID, id string) error {
	if err := s.rdb.Del(ctx, proposalKey(userID, id)).Err(); err != nil {
		return errors.Wrap(err, "failed to remove proposal")
	}
	return nil
}
