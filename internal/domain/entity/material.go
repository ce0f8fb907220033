package entity

// Categorías de material (valores tal como se guardan en la hoja).
const (
	CategoryInternal = "Interno"
	CategoryExternal = "Externo"
)

// Material representa una fila del catálogo de materiales.
// SKU es la clave primaria (primera columna); StockQuantity nunca es negativo.
type Material struct {
	SKU           string // formato xxxx-xxxx-x
	Description   string
	Unit          string // KG, UN, MT...
	StockQuantity int64
	Category      string
}

// ApplyDelta devuelve la cantidad resultante de sumar delta al stock, con piso en cero.
func (m Material) ApplyDelta(delta int64) int64 {
	next := m.StockQuantity + delta
	if next < 0 {
		return 0
	}
	return next
}
