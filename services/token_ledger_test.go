package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-service-server/models"
)

func TestTokenLedger_ResolveRoundTrip(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	request, _ := seedRequest(t, db, company, technician)

	ledger := NewTokenLedger(db, "http://reviews.example.com")

	resolved, err := ledger.Resolve(request.Token)
	require.NoError(t, err)
	assert.Equal(t, request.ID, resolved.ID)
}

func TestTokenLedger_ResolveUnknownToken(t *testing.T) {
	db := newTestDB(t)
	ledger := NewTokenLedger(db, "http://reviews.example.com")

	_, err := ledger.Resolve("no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenLedger_IssueIsImmutable(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	request, _ := seedRequest(t, db, company, technician)

	ledger := NewTokenLedger(db, "http://reviews.example.com")

	// The request already carries a token from creation; Issue must hand the
	// existing one back, never mint a replacement.
	token, err := ledger.Issue(request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.Token, token)

	var reloaded models.ReviewRequest
	require.NoError(t, db.First(&reloaded, request.ID).Error)
	assert.Equal(t, request.Token, reloaded.Token)
}

func TestTokenLedger_Links(t *testing.T) {
	ledger := NewTokenLedger(nil, "http://reviews.example.com")

	assert.Equal(t, "http://reviews.example.com/review/abc123", ledger.ReviewLink("abc123"))
	assert.Equal(t, "http://reviews.example.com/unsubscribe/abc123", ledger.UnsubscribeLink("abc123"))
}

func TestTokenLedger_RecordDelegatesIdempotently(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	request, status := seedRequest(t, db, company, technician)

	ledger := NewTokenLedger(db, "http://reviews.example.com")
	tracker := NewRequestTracker(db)

	require.NoError(t, ledger.RecordClick(request.Token))
	require.NoError(t, ledger.RecordClick(request.Token))
	require.NoError(t, ledger.RecordSubmission(request.Token))
	require.NoError(t, ledger.RecordSubmission(request.Token))

	reloaded, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.LinkClicked)
	assert.True(t, reloaded.ReviewSubmitted)
	assert.Equal(t, models.FollowUpCompleted, reloaded.Status)
}
