// Package store persists the terminal delivery status of pushes, so
// an initiator can query the fate of a push after its state machine
// is gone.
package store

import (
	"context"
	"errors"
)

// DeliveryResult is the final PAP delivery-status attribute of one
// push.
type DeliveryResult struct {
	PushID    int64  `bson:"push_id" json:"push_id"`
	PiPushID  string `bson:"pi_push_id" json:"pi_push_id"`
	Address   string `bson:"address" json:"address"`
	State     string `bson:"state" json:"state"`
	Code      int    `bson:"code" json:"code"`
	Desc      string `bson:"desc" json:"desc"`
	EventTime string `bson:"event_time" json:"event_time"`
}

var (
	ErrEmptyPushID = errors.New("pi_push_id is empty")
	ErrNotFound    = errors.New("delivery result does not exist")
)

// ResultStore is implemented by the database-backed store and the
// in-memory fallback.
type ResultStore interface {
	Save(ctx context.Context, result DeliveryResult) error
	Get(ctx context.Context, piPushID string) (*DeliveryResult, error)
	Delete(ctx context.Context, piPushID string) error
}
