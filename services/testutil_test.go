package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"review-service-server/models"
)

// newTestDB opens a private in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second pooled connection would see its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.Technician{},
		&models.CheckIn{},
		&models.ReviewRequest{},
		&models.ReviewRequestStatus{},
		&models.ReviewFollowUpSettings{},
		&models.ReviewResponse{},
	))

	return db
}

// seedTenant creates a company and technician to hang requests off
func seedTenant(t *testing.T, db *gorm.DB) (models.Company, models.Technician) {
	t.Helper()

	company := models.Company{Name: "Acme Plumbing", GoogleReviewLink: "https://g.page/acme/review", IsActive: true}
	require.NoError(t, db.Create(&company).Error)

	technician := models.Technician{CompanyID: company.ID, Name: "Jordan Fixit"}
	require.NoError(t, db.Create(&technician).Error)

	return company, technician
}

// seedRequest creates a request+status pair through the tracker
func seedRequest(t *testing.T, db *gorm.DB, company models.Company, technician models.Technician) (*models.ReviewRequest, *models.ReviewRequestStatus) {
	t.Helper()

	tracker := NewRequestTracker(db)
	request, err := tracker.CreateRequest(
		CustomerInfo{Name: "Ann Customer", Email: "ann@example.com", Phone: "+15550100"},
		technician.ID, company.ID, "plumbing", models.MethodBoth, "",
	)
	require.NoError(t, err)

	status, err := tracker.CreateStatus(request, nil)
	require.NoError(t, err)

	return request, status
}
