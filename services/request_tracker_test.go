package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-service-server/models"
)

func TestCreateRequest_IssuesUniqueTokens(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	tracker := NewRequestTracker(db)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		request, err := tracker.CreateRequest(
			CustomerInfo{Name: "Ann", Email: "ann@example.com"},
			technician.ID, company.ID, "plumbing", models.MethodEmail, "",
		)
		require.NoError(t, err)
		assert.Len(t, request.Token, 32)
		assert.False(t, seen[request.Token], "token reuse")
		seen[request.Token] = true
		assert.Equal(t, models.ReviewRequestPending, request.Status)
	}
}

func TestCreateStatus_StartsPendingWithClearFlags(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	_, status := seedRequest(t, db, company, technician)

	assert.Equal(t, models.FollowUpPending, status.Status)
	assert.False(t, status.InitialRequestSent)
	assert.False(t, status.FirstFollowUpSent)
	assert.False(t, status.SecondFollowUpSent)
	assert.False(t, status.FinalFollowUpSent)
	assert.Equal(t, "ann@example.com", status.CustomerEmail)
}

func TestAdvanceStage_SetsTimestampAndPromotes(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	_, status := seedRequest(t, db, company, technician)
	tracker := NewRequestTracker(db)

	now := time.Now().UTC().Truncate(time.Second)
	updated, err := tracker.AdvanceStage(status.ID, models.StageInitial, now)
	require.NoError(t, err)

	assert.True(t, updated.InitialRequestSent)
	require.NotNil(t, updated.InitialRequestSentAt)
	assert.Equal(t, models.FollowUpInProgress, updated.Status)
}

func TestAdvanceStage_ConflictOnSecondAttempt(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	_, status := seedRequest(t, db, company, technician)
	tracker := NewRequestTracker(db)

	first := time.Now().UTC()
	_, err := tracker.AdvanceStage(status.ID, models.StageInitial, first)
	require.NoError(t, err)

	_, err = tracker.AdvanceStage(status.ID, models.StageInitial, first.Add(time.Hour))
	assert.ErrorIs(t, err, ErrStageConflict)

	// The original timestamp survives the conflicting attempt
	reloaded, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.InitialRequestSentAt)
	assert.WithinDuration(t, first, *reloaded.InitialRequestSentAt, time.Second)
}

func TestAdvanceStage_UnknownStatus(t *testing.T) {
	db := newTestDB(t)
	tracker := NewRequestTracker(db)

	_, err := tracker.AdvanceStage(9999, models.StageInitial, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdvanceStage_TimestampsAreMonotonic(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	_, status := seedRequest(t, db, company, technician)
	tracker := NewRequestTracker(db)

	base := time.Now().UTC()
	stages := []models.FollowUpStage{models.StageInitial, models.StageFirst, models.StageSecond, models.StageFinal}
	for i, stage := range stages {
		_, err := tracker.AdvanceStage(status.ID, stage, base.AddDate(0, 0, i*3))
		require.NoError(t, err)
	}

	reloaded, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)

	timestamps := []*time.Time{
		reloaded.InitialRequestSentAt,
		reloaded.FirstFollowUpSentAt,
		reloaded.SecondFollowUpSentAt,
		reloaded.FinalFollowUpSentAt,
	}
	for i := 1; i < len(timestamps); i++ {
		require.NotNil(t, timestamps[i])
		assert.False(t, timestamps[i].Before(*timestamps[i-1]),
			"stage %d timestamp must be >= stage %d timestamp", i, i-1)
	}
}

func TestListOutstanding_ExcludesTerminalStates(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	tracker := NewRequestTracker(db)

	_, open := seedRequest(t, db, company, technician)
	request2, _ := seedRequest(t, db, company, technician)
	request3, _ := seedRequest(t, db, company, technician)

	require.NoError(t, tracker.RecordEvent(request2.Token, EventSubmit))
	require.NoError(t, tracker.RecordEvent(request3.Token, EventUnsubscribe))

	outstanding, err := tracker.ListOutstanding(company.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, open.ID, outstanding[0].ID)
}

func TestRecordEvent_SubmitIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	request, status := seedRequest(t, db, company, technician)
	tracker := NewRequestTracker(db)

	require.NoError(t, tracker.RecordEvent(request.Token, EventSubmit))

	first, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReviewSubmittedAt)
	assert.Equal(t, models.FollowUpCompleted, first.Status)

	// Replay: no error, no state change
	require.NoError(t, tracker.RecordEvent(request.Token, EventSubmit))

	second, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ReviewSubmittedAt.Unix(), second.ReviewSubmittedAt.Unix())
	assert.Equal(t, first.Status, second.Status)
}

func TestRecordEvent_ClickIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	request, status := seedRequest(t, db, company, technician)
	tracker := NewRequestTracker(db)

	require.NoError(t, tracker.RecordEvent(request.Token, EventClick))
	first, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	require.NotNil(t, first.LinkClickedAt)

	require.NoError(t, tracker.RecordEvent(request.Token, EventClick))
	second, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	assert.Equal(t, first.LinkClickedAt.Unix(), second.LinkClickedAt.Unix())
	// A click alone never completes the lifecycle
	assert.NotEqual(t, models.FollowUpCompleted, second.Status)
}

func TestRecordEvent_UnsubscribeTerminates(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	request, status := seedRequest(t, db, company, technician)
	tracker := NewRequestTracker(db)

	require.NoError(t, tracker.RecordEvent(request.Token, EventUnsubscribe))
	require.NoError(t, tracker.RecordEvent(request.Token, EventUnsubscribe))

	reloaded, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowUpUnsubscribed, reloaded.Status)
	require.NotNil(t, reloaded.UnsubscribedAt)
}

func TestRecordEvent_UnsubscribeAfterSubmitKeepsCompleted(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	request, status := seedRequest(t, db, company, technician)
	tracker := NewRequestTracker(db)

	require.NoError(t, tracker.RecordEvent(request.Token, EventSubmit))
	require.NoError(t, tracker.RecordEvent(request.Token, EventUnsubscribe))

	reloaded, err := tracker.GetStatus(status.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowUpCompleted, reloaded.Status)
	assert.Nil(t, reloaded.UnsubscribedAt)
	require.NotNil(t, reloaded.CompletedAt)
}

func TestRecordEvent_UnknownToken(t *testing.T) {
	db := newTestDB(t)
	tracker := NewRequestTracker(db)

	err := tracker.RecordEvent("deadbeef", EventClick)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFromCheckIn_AppliesTargetingFilters(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	tracker := NewRequestTracker(db)

	amount := 80.0
	satisfied := false
	checkIn := models.CheckIn{
		CompanyID:         company.ID,
		TechnicianID:      technician.ID,
		CustomerName:      "Ann",
		CustomerEmail:     "ann@example.com",
		JobType:           "hvac",
		InvoiceAmount:     &amount,
		CustomerSatisfied: &satisfied,
	}
	require.NoError(t, db.Create(&checkIn).Error)

	settings := models.DefaultReviewFollowUpSettings(company.ID)

	t.Run("service type allow-list", func(t *testing.T) {
		s := settings
		s.ServiceTypeFilter = []string{"plumbing"}
		request, status, err := tracker.CreateFromCheckIn(&checkIn, &s)
		require.NoError(t, err)
		assert.Nil(t, request)
		assert.Nil(t, status)
	})

	t.Run("minimum invoice amount", func(t *testing.T) {
		s := settings
		s.MinimumInvoiceAmount = 100
		request, _, err := tracker.CreateFromCheckIn(&checkIn, &s)
		require.NoError(t, err)
		assert.Nil(t, request)
	})

	t.Run("positive experience only", func(t *testing.T) {
		s := settings
		s.PositiveExperienceOnly = true
		request, _, err := tracker.CreateFromCheckIn(&checkIn, &s)
		require.NoError(t, err)
		assert.Nil(t, request)
	})

	t.Run("passing visit creates pair", func(t *testing.T) {
		s := settings
		request, status, err := tracker.CreateFromCheckIn(&checkIn, &s)
		require.NoError(t, err)
		require.NotNil(t, request)
		require.NotNil(t, status)
		assert.Equal(t, request.ID, status.ReviewRequestID)
		require.NotNil(t, status.CheckInID)
		assert.Equal(t, checkIn.ID, *status.CheckInID)
	})
}

func TestCompaniesWithOutstanding(t *testing.T) {
	db := newTestDB(t)
	company, technician := seedTenant(t, db)
	seedRequest(t, db, company, technician)

	inactive := models.Company{Name: "Closed Shop", IsActive: false}
	require.NoError(t, db.Create(&inactive).Error)

	// The false value must survive the insert; a schema default would
	// silently flip a deactivated tenant back on.
	var saved models.Company
	require.NoError(t, db.First(&saved, inactive.ID).Error)
	require.False(t, saved.IsActive)
	inactiveTech := models.Technician{CompanyID: inactive.ID, Name: "Ghost"}
	require.NoError(t, db.Create(&inactiveTech).Error)
	seedRequest(t, db, inactive, inactiveTech)

	tracker := NewRequestTracker(db)
	ids, err := tracker.CompaniesWithOutstanding()
	require.NoError(t, err)
	assert.Equal(t, []uint{company.ID}, ids)
}
