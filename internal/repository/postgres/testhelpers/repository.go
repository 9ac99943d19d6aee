package testhelpers

import (
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewSnapshotRepositoryForTest creates a snapshot repository with test database and logger
func NewSnapshotRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.SnapshotRepository {
	return postgres.NewSnapshotRepository(NewDBForTest(db, logger))
}
