package partner

import (
	"context"
	"errors"
	"time"

	"gotalk/server/internal/models"
)

// ErrSelfRequest is returned when a profile sends a request to itself.
var ErrSelfRequest = errors.New("cannot request yourself as a partner")

// Service governs the lifecycle of the directed follow relationship
// between two profiles: requested, then either accepted (which
// symmetrizes the pair) or rejected (which deletes both directions).
// Chat is unlocked only once both directions are accepted.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Request records that follower wants to follow/chat with followed.
// Re-requesting an existing pair refreshes the request date only; an
// already-accepted relationship is never re-pended. Returns whether a
// new record was created.
func (s *Service) Request(ctx context.Context, followerID, followedID int64) (bool, error) {
	if followerID == followedID {
		return false, ErrSelfRequest
	}
	return s.repo.Upsert(ctx, followedID, followerID, s.now())
}

// Accept responds to requesterID's request on behalf of profileID. The
// response date is stamped on both directional records where present,
// so acceptance is mutual. Accepting with no record on either side is a
// silent no-op.
func (s *Service) Accept(ctx context.Context, profileID, requesterID int64) error {
	respondedAt := s.now()
	if err := s.repo.MarkResponded(ctx, profileID, requesterID, respondedAt); err != nil {
		return err
	}
	return s.repo.MarkResponded(ctx, requesterID, profileID, respondedAt)
}

// Reject removes both directional records between two profiles,
// regardless of their state. Rejecting an empty pair is a no-op.
func (s *Service) Reject(ctx context.Context, a, b int64) error {
	return s.repo.DeletePair(ctx, a, b)
}

// CanChat reports whether both directional records exist and have been
// accepted.
func (s *Service) CanChat(ctx context.Context, a, b int64) (bool, error) {
	forward, err := s.repo.Find(ctx, a, b)
	if err != nil {
		return false, err
	}
	if forward == nil || !forward.Accepted() {
		return false, nil
	}
	backward, err := s.repo.Find(ctx, b, a)
	if err != nil {
		return false, err
	}
	return backward != nil && backward.Accepted(), nil
}

// IsPending reports whether follower has an unanswered request to
// followed.
func (s *Service) IsPending(ctx context.Context, followerID, followedID int64) (bool, error) {
	p, err := s.repo.Find(ctx, followedID, followerID)
	if err != nil {
		return false, err
	}
	return p != nil && !p.Accepted(), nil
}

// IsPartner reports whether an accepted edge exists in either direction.
func (s *Service) IsPartner(ctx context.Context, a, b int64) (bool, error) {
	forward, err := s.repo.Find(ctx, a, b)
	if err != nil {
		return false, err
	}
	if forward != nil && forward.Accepted() {
		return true, nil
	}
	backward, err := s.repo.Find(ctx, b, a)
	if err != nil {
		return false, err
	}
	return backward != nil && backward.Accepted(), nil
}

// Partners lists the profile ids mutually accepted with profileID.
func (s *Service) Partners(ctx context.Context, profileID int64) ([]int64, error) {
	return s.repo.AcceptedPeers(ctx, profileID)
}

// PendingFor lists the incoming requests profileID has not answered yet.
func (s *Service) PendingFor(ctx context.Context, profileID int64) ([]models.Partner, error) {
	return s.repo.PendingFor(ctx, profileID)
}
