package models

import "math/big"

type SessionStatus string

const (
	SessionUninitialized SessionStatus = "uninitialized"
	SessionConnected     SessionStatus = "connected"
	SessionNoProvider    SessionStatus = "no-provider"
)

// Session is the active identity plus its derived connectivity status.
// An empty Identity means no account is selected.
type Session struct {
	Identity string        `json:"identity"`
	Status   SessionStatus `json:"status"`
}

// Item is a ledger-resident marketplace record. IDs are 1-based and
// assigned by the contract. Price is in wei and immutable once listed.
// Sold is a one-way latch set on first purchase; transfers move Owner
// without touching it.
type Item struct {
	ID     uint64   `json:"id"`
	Name   string   `json:"name"`
	Price  *big.Int `json:"-"`
	Seller string   `json:"seller"`
	Owner  string   `json:"owner"`
	Sold   bool     `json:"sold"`
}

// PriceString renders the wei amount as an exact decimal string for
// transport boundaries. Prices never cross a boundary as floats.
func (i Item) PriceString() string {
	if i.Price == nil {
		return "0"
	}
	return i.Price.String()
}
