package service

import (
	"database/sql"

	"github.com/ndewijer/portfolio-tracker/internal/database"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
	"github.com/ndewijer/portfolio-tracker/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db    *sql.DB
	guard *upstream.Guard
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, guard *upstream.Guard) *SystemService {
	return &SystemService{
		db:    db,
		guard: guard,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

func (s *SystemService) CheckVersion() string {
	return version.Version
}

// SchemaVersion returns the applied migration version.
func (s *SystemService) SchemaVersion() (int64, error) {
	return database.SchemaVersion(s.db)
}

// Breakers returns the state of every upstream circuit breaker used so far.
func (s *SystemService) Breakers() []model.BreakerStatus {
	return s.guard.Status()
}
