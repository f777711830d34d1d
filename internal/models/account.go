package models

import "time"

// Account is an ownership scope for trades. Trades reference accounts by id;
// metrics can be computed for one account's trades or for all of them.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GroupID   string    `json:"groupId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AccountGroup collects related accounts (e.g. one group per exchange or
// per family member).
type AccountGroup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
