package model

import (
	"database/sql"
	"time"
)

const (
	StatusUnpublished uint8 = 0
	StatusPublished   uint8 = 1
)

type Category struct {
	ID          uint64
	Name        string
	Description sql.NullString
	Status      uint8
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CategoryPatch struct {
	Name        *string
	Description *string
	Status      *uint8
}

func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil
}
