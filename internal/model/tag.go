package model

import (
	"database/sql"
	"time"
)

const (
	TagTypeSystem uint8 = 0
	TagTypeCustom uint8 = 1
)

type Tag struct {
	ID          uint64
	Name        string
	Type        uint8
	Status      uint8
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TagPatch struct {
	Name        *string
	Type        *uint8
	Status      *uint8
	Description *string
}

func (p TagPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Status == nil && p.Description == nil
}
