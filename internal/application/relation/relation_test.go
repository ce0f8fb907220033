package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type usage struct {
	ObraID string
	SKU    string
}

type obra struct {
	ID        string
	Materiais []usage
}

func TestIndexBy_ConservaOrden(t *testing.T) {
	children := []usage{
		{"OBRA-1", "A"}, {"OBRA-2", "B"}, {"OBRA-1", "C"}, {"", "huerfano"}, {"OBRA-1", "D"},
	}
	idx := IndexBy(children, func(u usage) string { return u.ObraID })

	assert.Equal(t, []usage{{"OBRA-1", "A"}, {"OBRA-1", "C"}, {"OBRA-1", "D"}}, idx.Children("OBRA-1"))
	assert.Len(t, idx.Children("OBRA-2"), 1)
	assert.NotNil(t, idx.Children("OBRA-9"), "sin hijos devuelve lista vacía")
	assert.Empty(t, idx.Children("OBRA-9"))
	assert.Empty(t, idx.Children(""), "clave vacía no se indexa")
}

func TestAttach_ClaveColgadaSeTolera(t *testing.T) {
	parents := []obra{{ID: "OBRA-1"}, {ID: "OBRA-2"}}
	children := []usage{{"OBRA-1", "A"}, {"OBRA-X", "Z"}}
	idx := IndexBy(children, func(u usage) string { return u.ObraID })

	Attach(parents, func(o obra) string { return o.ID }, idx, func(o *obra, c []usage) { o.Materiais = c })

	assert.Equal(t, []usage{{"OBRA-1", "A"}}, parents[0].Materiais)
	assert.Empty(t, parents[1].Materiais)
}

func TestChildren_DevuelveCopia(t *testing.T) {
	idx := IndexBy([]usage{{"O", "A"}}, func(u usage) string { return u.ObraID })
	got := idx.Children("O")
	got[0].SKU = "mutado"
	assert.Equal(t, "A", idx.Children("O")[0].SKU)
}
