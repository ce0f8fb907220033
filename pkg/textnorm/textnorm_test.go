package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Descrição", "descricao"},
		{"  Concluída ", "concluida"},
		{"ADEQUAÇÃO", "adequacao"},
		{"SKU-01", "sku-01"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Rua São João", "sao joao"))
	assert.True(t, Contains("Cabo elétrico", "ELETRICO"))
	assert.True(t, Contains("cualquier cosa", ""), "needle vacío coincide siempre")
	assert.False(t, Contains("Rua A", "Rua B"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Alívio", "alivio"))
	assert.False(t, Equal("SC", "SP"))
}
