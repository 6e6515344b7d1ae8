package jobs

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"review-service-server/models"
	"review-service-server/services"
)

// FollowUpJob is the periodic reconciliation driver for the review
// solicitation lifecycle. Each pass walks every tenant with outstanding
// requests and advances at most one stage per request. Correctness under
// overlapping or sharded passes rests on the tracker's conditional stage
// advance, not on locking here.
type FollowUpJob struct {
	db          *gorm.DB
	tracker     *services.RequestTracker
	settings    *services.SettingsProvider
	dispatch    *services.DispatchEngine
	holidays    services.HolidayChecker
	interval    time.Duration
	warmUp      time.Duration
	workerLimit int
	now         func() time.Time

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewFollowUpJob creates a new follow-up reconciliation job
func NewFollowUpJob(db *gorm.DB, dispatch *services.DispatchEngine, interval, warmUp time.Duration, workerLimit int) *FollowUpJob {
	if interval <= 0 {
		interval = time.Hour
	}
	if workerLimit <= 0 {
		workerLimit = 8
	}
	return &FollowUpJob{
		db:          db,
		tracker:     services.NewRequestTracker(db),
		settings:    services.NewSettingsProvider(db),
		dispatch:    dispatch,
		holidays:    services.DefaultHolidayChecker,
		interval:    interval,
		warmUp:      warmUp,
		workerLimit: workerLimit,
		now:         time.Now,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start begins the follow-up job
func (j *FollowUpJob) Start() {
	go j.run()
	log.Printf("🚀 Review follow-up job started (interval %s, warm-up %s)", j.interval, j.warmUp)
}

// Stop stops the job. New work stops immediately; sends already in flight
// finish before Stop returns.
func (j *FollowUpJob) Stop() {
	close(j.stopChan)
	<-j.doneChan
	log.Println("🛑 Review follow-up job stopped")
}

func (j *FollowUpJob) run() {
	defer close(j.doneChan)

	// Warm-up pass shortly after process start, so a restart doesn't push
	// every pending send out by a full interval.
	warmUp := time.NewTimer(j.warmUp)
	defer warmUp.Stop()
	select {
	case <-warmUp.C:
		j.runPass()
	case <-j.stopChan:
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.runPass()
		case <-j.stopChan:
			return
		}
	}
}

// runPass executes one reconciliation pass across all tenants. A fault in
// one tenant never aborts the others.
func (j *FollowUpJob) runPass() {
	start := j.now()

	companyIDs, err := j.tracker.CompaniesWithOutstanding()
	if err != nil {
		log.Printf("❌ Reconciliation pass could not list tenants: %v", err)
		return
	}
	if len(companyIDs) == 0 {
		return
	}

	log.Printf("🔄 Reconciliation pass over %d tenant(s)", len(companyIDs))

	for _, companyID := range companyIDs {
		select {
		case <-j.stopChan:
			log.Println("⏹️ Reconciliation pass interrupted by shutdown")
			return
		default:
		}
		j.reconcileCompany(companyID)
	}

	log.Printf("✅ Reconciliation pass finished in %s", time.Since(start).Round(time.Millisecond))
}

// reconcileCompany advances outstanding requests for one tenant with bounded
// concurrency across its statuses.
func (j *FollowUpJob) reconcileCompany(companyID uint) {
	settings, err := j.settings.Get(companyID)
	if err != nil {
		log.Printf("❌ Company %d: settings fetch failed: %v", companyID, err)
		return
	}

	statuses, err := j.tracker.ListOutstanding(companyID)
	if err != nil {
		log.Printf("❌ Company %d: outstanding list failed: %v", companyID, err)
		return
	}
	if len(statuses) == 0 {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(j.workerLimit)

loop:
	for i := range statuses {
		status := statuses[i]

		select {
		case <-j.stopChan:
			break loop
		default:
		}

		g.Go(func() error {
			// Unit faults are logged, never returned: one bad status must
			// not cancel its siblings.
			j.reconcileStatus(settings, &status)
			return nil
		})
	}

	g.Wait()
}

// reconcileStatus picks the target stage for one status and dispatches it if
// the timing gate allows.
func (j *FollowUpJob) reconcileStatus(settings *models.ReviewFollowUpSettings, status *models.ReviewRequestStatus) {
	now := j.now()

	stage, ok := TargetStage(settings, status, now)
	if !ok {
		return
	}

	if !services.IsEligibleNow(settings, now, j.holidays) {
		return
	}

	dc, err := j.loadDispatchContext(settings, status)
	if err != nil {
		log.Printf("❌ Status %d: could not load dispatch context: %v", status.ID, err)
		return
	}

	success, err := j.dispatch.SendStage(context.Background(), stage, dc, now)
	if err != nil {
		log.Printf("❌ Status %d: stage %s dispatch failed: %v", status.ID, stage, err)
		return
	}
	if !success {
		log.Printf("⚠️ Status %d: no channel delivered stage %s, will retry next pass", status.ID, stage)
		return
	}

	log.Printf("✅ Status %d: stage %s sent", status.ID, stage)
}

func (j *FollowUpJob) loadDispatchContext(settings *models.ReviewFollowUpSettings, status *models.ReviewRequestStatus) (services.DispatchContext, error) {
	request, err := j.tracker.GetRequest(status.ReviewRequestID)
	if err != nil {
		return services.DispatchContext{}, err
	}

	dc := services.DispatchContext{
		Request:  request,
		Status:   status,
		Settings: settings,
	}

	var company models.Company
	if err := j.db.First(&company, status.CompanyID).Error; err == nil {
		dc.Company = &company
	}

	var technician models.Technician
	if err := j.db.First(&technician, status.TechnicianID).Error; err == nil {
		dc.Technician = &technician
	}

	if status.CheckInID != nil {
		var checkIn models.CheckIn
		if err := j.db.First(&checkIn, *status.CheckInID).Error; err == nil {
			dc.CheckIn = &checkIn
		}
	}

	return dc, nil
}

// TargetStage picks at most one stage to attempt for a status this pass.
// Strict precedence, first match wins; stage N is only reachable once stage
// N-1 carries a timestamp.
func TargetStage(settings *models.ReviewFollowUpSettings, status *models.ReviewRequestStatus, now time.Time) (models.FollowUpStage, bool) {
	if status.IsTerminal() {
		return "", false
	}

	if !status.InitialRequestSent {
		return models.StageInitial, true
	}

	if settings.EnableFirstFollowUp && !status.FirstFollowUpSent &&
		status.InitialRequestSentAt != nil &&
		DaysBetween(*status.InitialRequestSentAt, now) >= settings.FirstFollowUpDelayDays {
		return models.StageFirst, true
	}

	if settings.EnableSecondFollowUp && !status.SecondFollowUpSent &&
		status.FirstFollowUpSentAt != nil &&
		DaysBetween(*status.FirstFollowUpSentAt, now) >= settings.SecondFollowUpDelayDays {
		return models.StageSecond, true
	}

	if settings.EnableFinalFollowUp && !status.FinalFollowUpSent &&
		status.SecondFollowUpSentAt != nil &&
		DaysBetween(*status.SecondFollowUpSentAt, now) >= settings.FinalFollowUpDelayDays {
		return models.StageFinal, true
	}

	return "", false
}

// DaysBetween counts whole 24-hour periods between two instants. This is a
// fractional-day floor, not calendar-day subtraction: 2 days and 23 hours is
// still 2 days.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
