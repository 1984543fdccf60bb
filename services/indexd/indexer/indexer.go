package indexer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"nhooyr.io/websocket"

	"vebetterdao/services/indexd/models"
)

const reconnectDelay = 5 * time.Second

// Indexer consumes the node's websocket event stream and materializes it into
// queryable tables.
type Indexer struct {
	db    *gorm.DB
	wsURL string
	now   func() time.Time
}

// New builds an indexer against the given database and node stream URL.
func New(db *gorm.DB, wsURL string) *Indexer {
	return &Indexer{db: db, wsURL: wsURL, now: time.Now}
}

// Run streams events until the context is canceled, reconnecting on stream
// failures.
func (ix *Indexer) Run(ctx context.Context) error {
	for {
		if err := ix.stream(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("event stream interrupted", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (ix *Indexer) stream(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, ix.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "indexer shutdown")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		payload := struct {
			Type       string            `json:"type"`
			Attributes map[string]string `json:"attributes"`
		}{}
		if err := json.Unmarshal(data, &payload); err != nil {
			slog.Warn("skipping malformed event", "err", err)
			continue
		}
		if err := ix.Apply(payload.Type, payload.Attributes); err != nil {
			slog.Error("failed to index event", "type", payload.Type, "err", err)
		}
	}
}

// Apply persists one event and updates the derived tables.
func (ix *Indexer) Apply(eventType string, attrs map[string]string) error {
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	record := &models.EventRecord{
		ID:         uuid.New(),
		Type:       eventType,
		Attributes: string(encoded),
		ReceivedAt: ix.now(),
	}
	if err := ix.db.Create(record).Error; err != nil {
		return err
	}

	switch eventType {
	case "allocation.round_created":
		return ix.applyRoundCreated(attrs)
	case "allocation.round_finalized":
		return ix.applyRoundFinalized(attrs)
	case "allocation.vote":
		return ix.applyVote(attrs)
	case "rewards.claimed":
		return ix.applyVoterClaim(attrs)
	case "allocpool.claimed":
		return ix.applyAppClaim(attrs)
	}
	return nil
}

func parseUintAttr(attrs map[string]string, key string) uint64 {
	value, _ := strconv.ParseUint(attrs[key], 10, 64)
	return value
}

func (ix *Indexer) applyRoundCreated(attrs map[string]string) error {
	round := &models.Round{
		RoundID:   parseUintAttr(attrs, "round"),
		Proposer:  attrs["proposer"],
		VoteStart: parseUintAttr(attrs, "vote_start"),
		VoteEnd:   parseUintAttr(attrs, "vote_end"),
		State:     "active",
	}
	return ix.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"proposer", "vote_start", "vote_end", "state"}),
	}).Create(round).Error
}

func (ix *Indexer) applyRoundFinalized(attrs map[string]string) error {
	return ix.db.Model(&models.Round{}).
		Where("round_id = ?", parseUintAttr(attrs, "round")).
		Update("state", attrs["state"]).Error
}

func (ix *Indexer) applyVote(attrs map[string]string) error {
	vote := &models.Vote{
		ID:        uuid.New(),
		RoundID:   parseUintAttr(attrs, "round"),
		Voter:     attrs["voter"],
		Apps:      attrs["apps"],
		Weights:   attrs["weights"],
		Weight:    attrs["weight"],
		CreatedAt: ix.now(),
	}
	return ix.db.Create(vote).Error
}

func (ix *Indexer) applyVoterClaim(attrs map[string]string) error {
	claim := &models.Claim{
		ID:        uuid.New(),
		Kind:      "voter_reward",
		Account:   attrs["voter"],
		Reference: "cycle:" + attrs["cycle"],
		Amount:    attrs["amount"],
		CreatedAt: ix.now(),
	}
	return ix.db.Create(claim).Error
}

func (ix *Indexer) applyAppClaim(attrs map[string]string) error {
	claim := &models.Claim{
		ID:        uuid.New(),
		Kind:      "app_earnings",
		Account:   attrs["app"],
		Reference: "round:" + attrs["round"],
		Amount:    attrs["pool"],
		CreatedAt: ix.now(),
	}
	return ix.db.Create(claim).Error
}
