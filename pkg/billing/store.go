package billing

import "gorm.io/gorm"

// Store is the persistence boundary for the billing engine. The gorm handle
// is injected so components never reach for process-wide state, and every
// multi-statement write goes through Transaction so a failure at any step
// rolls back the whole unit of work.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle for single-statement reads.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside one database transaction: commit if fn returns
// nil, rollback and propagate otherwise.
func (s *Store) Transaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}
