package entity

import "time"

// MovementLogEntry registra un cambio de cantidad en el catálogo.
type MovementLogEntry struct {
	At       time.Time
	SKU      string
	Delta    int64
	Previous int64
	Current  int64
	Reason   string
	Actor    string
}

// DeletionLogEntry registra la eliminación de un material.
type DeletionLogEntry struct {
	At          time.Time
	SKU         string
	Description string
	Reason      string
	Actor       string
}
