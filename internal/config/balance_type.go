package config

// BalanceType labels the direction of a ledger audit row: income credits
// the session, outcome debits it.
type BalanceType string

const (
	Income  BalanceType = "income"
	Outcome BalanceType = "outcome"
)
