// Package model contains domain models passed between layers.
package model

import "time"

// TuneEvent is a notification the weaver reacts to, e.g. a successful
// proof-of-conscious-contribution for an account.
type TuneEvent struct {
	AccountID  string    `json:"accountId"`
	Event      string    `json:"event"`
	ReceivedAt time.Time `json:"-"`
}
