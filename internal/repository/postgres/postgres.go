package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"

	"rental-mngt-admin/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.ChangeEventRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		ChangeEventRepository:  NewChangeEventRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
