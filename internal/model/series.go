package model

import (
	"database/sql"
	"time"
)

const (
	SeriesSerialising uint8 = 0
	SeriesFinished    uint8 = 1
)

const (
	SeriesFree       uint8 = 0
	SeriesLoginGated uint8 = 1
	SeriesPaid       uint8 = 2
)

// Series is an ordered collection of articles with its own author.
type Series struct {
	ID          uint64
	Name        string
	Description sql.NullString
	Cover       string
	Status      uint8
	Nums        uint32
	Type        uint8
	PublishedAt time.Time
	UserID      uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type SeriesPatch struct {
	Name        *string
	Description *string
	Cover       *string
	Status      *uint8
	Nums        *uint32
	Type        *uint8
	PublishedAt *time.Time
}

func (p SeriesPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Cover == nil && p.Status == nil &&
		p.Nums == nil && p.Type == nil && p.PublishedAt == nil
}
