package partner

import (
	"context"
	"sort"
	"testing"
	"time"

	"gotalk/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepository mirrors the SQL repository's semantics on a map.
type memRepository struct {
	records map[[2]int64]*models.Partner // key: followed, follower
}

func newMemRepository() *memRepository {
	return &memRepository{records: map[[2]int64]*models.Partner{}}
}

func (m *memRepository) Upsert(_ context.Context, followedID, followerID int64, requestedAt time.Time) (bool, error) {
	key := [2]int64{followedID, followerID}
	if p, ok := m.records[key]; ok {
		p.RequestDate = requestedAt
		return false, nil
	}
	m.records[key] = &models.Partner{
		FollowedID:  followedID,
		FollowerID:  followerID,
		RequestDate: requestedAt,
	}
	return true, nil
}

func (m *memRepository) MarkResponded(_ context.Context, followedID, followerID int64, respondedAt time.Time) error {
	if p, ok := m.records[[2]int64{followedID, followerID}]; ok {
		t := respondedAt
		p.ResponseDate = &t
	}
	return nil
}

func (m *memRepository) DeletePair(_ context.Context, a, b int64) error {
	delete(m.records, [2]int64{a, b})
	delete(m.records, [2]int64{b, a})
	return nil
}

func (m *memRepository) Find(_ context.Context, followedID, followerID int64) (*models.Partner, error) {
	if p, ok := m.records[[2]int64{followedID, followerID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memRepository) PendingFor(_ context.Context, followedID int64) ([]models.Partner, error) {
	var pending []models.Partner
	for _, p := range m.records {
		if p.FollowedID == followedID && p.ResponseDate == nil {
			pending = append(pending, *p)
		}
	}
	return pending, nil
}

func (m *memRepository) AcceptedPeers(_ context.Context, profileID int64) ([]int64, error) {
	seen := map[int64]bool{}
	var peers []int64
	for _, p := range m.records {
		if p.ResponseDate == nil {
			continue
		}
		var peer int64
		switch profileID {
		case p.FollowedID:
			peer = p.FollowerID
		case p.FollowerID:
			peer = p.FollowedID
		default:
			continue
		}
		if !seen[peer] {
			seen[peer] = true
			peers = append(peers, peer)
		}
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
	return peers, nil
}

func newTestService() (*Service, *memRepository) {
	repo := newMemRepository()
	svc := NewService(repo)
	return svc, repo
}

func TestRequestThenAcceptUnlocksChat(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Request(ctx, 1, 2) // profile 1 requests profile 2
	require.NoError(t, err)
	assert.True(t, created)

	pending, err := svc.IsPending(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, pending)

	require.NoError(t, svc.Accept(ctx, 2, 1))

	canChat, err := svc.CanChat(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, canChat)
}

func TestSingleSidedAcceptDoesNotUnlockChat(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, 2, 1))

	// Only the 1->2 record exists; the reverse direction was never
	// created, so chat stays locked.
	forward, err := repo.Find(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, forward.Accepted())

	canChat, err := svc.CanChat(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, canChat)
}

func TestMutualRequestsAcceptSymmetrizes(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.Request(ctx, 2, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, 2, 1))

	forward, err := repo.Find(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, forward)
	assert.True(t, forward.Accepted())

	backward, err := repo.Find(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, backward)
	assert.True(t, backward.Accepted())

	canChat, err := svc.CanChat(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, canChat)
}

func TestRejectClearsAllState(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.Request(ctx, 2, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, 2, 1))

	require.NoError(t, svc.Reject(ctx, 1, 2))

	canChat, err := svc.CanChat(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, canChat)

	pending, err := svc.IsPending(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, pending)

	// A later request starts from a clean slate.
	created, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestRejectIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, 1, 2))
	require.NoError(t, svc.Reject(ctx, 1, 2))
}

func TestAcceptWithoutRequestIsNoOp(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Accept(ctx, 2, 1))
	assert.Empty(t, repo.records)
}

func TestReRequestKeepsAcceptedState(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, 2, 1))

	accepted, err := repo.Find(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, accepted.ResponseDate)

	created, err := svc.Request(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)

	after, err := repo.Find(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, after.ResponseDate)
	assert.Equal(t, *accepted.ResponseDate, *after.ResponseDate)
	assert.True(t, after.RequestDate.After(accepted.RequestDate) || after.RequestDate.Equal(accepted.RequestDate))
}

func TestSelfRequestRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Request(context.Background(), 5, 5)
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestPartnersAndPending(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Request(ctx, 2, 1)
	require.NoError(t, err)
	_, err = svc.Request(ctx, 3, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, 1, 2))

	pending, err := svc.PendingFor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(3), pending[0].FollowerID)

	partners, err := svc.Partners(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, partners)

	isPartner, err := svc.IsPartner(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, isPartner)
}
