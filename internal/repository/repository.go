package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// Store bundles the repositories of one persistence backend.
type Store struct {
	Admins    AdminRepository
	Users     UserRepository
	Courses   CourseRepository
	Purchases PurchaseRepository
	Close     func() error
}

// NewGormStore builds a Store over a gorm connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Admins:    NewAdminRepository(db),
		Users:     NewUserRepository(db),
		Courses:   NewCourseRepository(db),
		Purchases: NewPurchaseRepository(db),
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// translate maps driver errors onto ErrNotFound and ErrDuplicate.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
