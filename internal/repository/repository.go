package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict is returned when an optimistic update matched no row
// because another transaction bumped the version first.
var ErrVersionConflict = errors.New("repository: version conflict")

// use returns tx when the caller runs inside a transaction, db otherwise.
// Reads that feed a write must go through tx so they observe the same snapshot.
func use(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// forUpdate adds SELECT ... FOR UPDATE when lock is set. Dialects without
// row locks (sqlite) drop the clause.
func forUpdate(q *gorm.DB, lock bool) *gorm.DB {
	if !lock {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

func paginate(page, limit, def, max int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > max {
		limit = def
	}
	return page, limit, (page - 1) * limit
}
