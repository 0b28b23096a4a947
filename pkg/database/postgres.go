package database

import (
	"log"

	"github.com/roomescape-club/reservation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Theme{},
		&models.ReservationTime{},
		&models.Reservation{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique indexes back the engine's invariants even if a bug
	// slips past the advisory lock: one BOOKED record per slot, one active
	// record per member and slot.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reservation_booked_slot
		ON reservations (theme_id, date, time_id)
		WHERE status = 'BOOKED'
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reservation_active_member
		ON reservations (member_id, theme_id, date, time_id)
		WHERE status IN ('BOOKED', 'WAITING')
	`)

	return db
}
