package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"

	"review-service-server/models"
)

// newReviewToken generates a cryptographically random review token
func newReviewToken() (string, error) {
	tokenBytes := make([]byte, 16)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate review token: %w", err)
	}
	return hex.EncodeToString(tokenBytes), nil
}

// TokenLedger issues and resolves the opaque tokens that correlate public
// review links with their requests, and forwards engagement events from the
// public endpoints to the tracker.
type TokenLedger struct {
	db      *gorm.DB
	tracker *RequestTracker
	baseURL string
}

// NewTokenLedger creates a new token ledger. baseURL is the public origin the
// review links point at, without a trailing slash.
func NewTokenLedger(db *gorm.DB, baseURL string) *TokenLedger {
	return &TokenLedger{
		db:      db,
		tracker: NewRequestTracker(db),
		baseURL: baseURL,
	}
}

// Issue assigns a fresh token to a request that does not have one yet.
// Tokens are immutable: issuing against a request that already holds a token
// returns the existing one. Requests created through the tracker arrive here
// already tokenized.
func (l *TokenLedger) Issue(requestID uint) (string, error) {
	token, err := newReviewToken()
	if err != nil {
		return "", err
	}

	res := l.db.Model(&models.ReviewRequest{}).
		Where("id = ? AND (token IS NULL OR token = '')", requestID).
		Update("token", token)
	if res.Error != nil {
		return "", &StoreError{Op: "issue token", Err: res.Error}
	}
	if res.RowsAffected == 1 {
		return token, nil
	}

	request, err := l.tracker.GetRequest(requestID)
	if err != nil {
		return "", err
	}
	return request.Token, nil
}

// Resolve returns the request behind a token
func (l *TokenLedger) Resolve(token string) (*models.ReviewRequest, error) {
	return l.tracker.GetRequestByToken(token)
}

// ReviewLink builds the public review URL for a token
func (l *TokenLedger) ReviewLink(token string) string {
	return l.baseURL + "/review/" + token
}

// UnsubscribeLink builds the public unsubscribe URL for a token
func (l *TokenLedger) UnsubscribeLink(token string) string {
	return l.baseURL + "/unsubscribe/" + token
}

// RecordClick records that the customer followed the review link. Safe to
// call repeatedly; redirects get retried by mail scanners all the time.
func (l *TokenLedger) RecordClick(token string) error {
	return l.tracker.RecordEvent(token, EventClick)
}

// RecordSubmission records that the customer submitted a review, completing
// the lifecycle.
func (l *TokenLedger) RecordSubmission(token string) error {
	return l.tracker.RecordEvent(token, EventSubmit)
}

// RecordUnsubscribe records an opt-out, terminating the lifecycle.
func (l *TokenLedger) RecordUnsubscribe(token string) error {
	return l.tracker.RecordEvent(token, EventUnsubscribe)
}
