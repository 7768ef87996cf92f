package model

// PlayerID is the ledger's user identifier for a café customer
type PlayerID string

// Player is the caller identity carried by a verified token
type Player struct {
	ID          PlayerID
	DisplayName string
	Role        string // "user", "staff" or "admin" as issued by the backend
}
