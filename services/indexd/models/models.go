package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRecord stores every raw event received from the node stream.
type EventRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type       string    `gorm:"size:64;index"`
	Attributes string    `gorm:"type:text"`
	ReceivedAt time.Time `gorm:"index"`
}

// Round tracks the lifecycle of an allocation voting round.
type Round struct {
	RoundID   uint64 `gorm:"primaryKey"`
	Proposer  string `gorm:"size:64"`
	VoteStart uint64
	VoteEnd   uint64
	State     string `gorm:"size:16;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vote stores one allocation ballot.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoundID   uint64    `gorm:"index"`
	Voter     string    `gorm:"size:64;index"`
	Apps      string    `gorm:"type:text"`
	Weights   string    `gorm:"type:text"`
	Weight    string    `gorm:"size:96"`
	CreatedAt time.Time
}

// Claim stores reward payouts (app earnings and voter rewards).
type Claim struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"size:32;index"`
	Account   string    `gorm:"size:64;index"`
	Reference string    `gorm:"size:96"`
	Amount    string    `gorm:"size:96"`
	CreatedAt time.Time
}

// AutoMigrate creates or upgrades the indexer schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&EventRecord{}, &Round{}, &Vote{}, &Claim{})
}
