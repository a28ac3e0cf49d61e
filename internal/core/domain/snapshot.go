package domain

// Program is a sellable package grouped under a master trip (cost center).
type Program struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	MasterTripID string `json:"masterTripId,omitempty"`
}

// Snapshot is the read-only dataset one report is computed from.
// The three ledger collections are required; an empty collection is fine, a missing one is not.
type Snapshot struct {
	Transactions   []Transaction  `json:"transactions" validate:"required"`
	JournalEntries []JournalEntry `json:"journalEntries" validate:"required"`
	Accounts       []Account      `json:"accounts" validate:"required"`
	Programs       []Program      `json:"programs,omitempty"`
}
