package entity

import "github.com/shopspring/decimal"

// Tipos de obra.
const (
	OrderTypeRelief   = "Alivio"
	OrderTypeAdequacy = "Adequacao"
)

// Estados de obra. La única transición observada es Nova -> Concluída.
const (
	StatusNew       = "Nova"
	StatusCompleted = "Concluída"
)

// WorkOrder ("obra") registra un trabajo de campo: técnico, ubicación y materiales consumidos.
type WorkOrder struct {
	ID         string // OBRA-<año>-<5 caracteres>
	Technician string
	Region     string // UF
	Address    string
	Number     string
	Complement string
	OrderType  string
	Notes      string
	Date       string // ISO yyyy-mm-dd
	Status     string
	Materials  []MaterialUsage
}

// MaterialUsage es una línea de material usada en una obra. Region, Address y Number
// son copias desnormalizadas de la obra para exportar en plano.
type MaterialUsage struct {
	OrderID     string
	Region      string
	Address     string
	Number      string
	SKU         string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UsageDate   string
}
