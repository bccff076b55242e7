package event

import (
	"context"
	"time"
)

type Change string

const (
	ChangeInserted  Change = "inserted"
	ChangeRetracted Change = "retracted"
)

// AlertChanged is published once per key that entered or left the snapshot.
type AlertChanged struct {
	Change      Change    `json:"change"`
	LineID      int64     `json:"line_id"`
	LineName    string    `json:"line_name,omitempty"`
	Hash        string    `json:"alert_hash"`
	Type        string    `json:"type,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
}

type Publisher interface {
	PublishAlertChanged(ctx context.Context, ev AlertChanged) error
}
