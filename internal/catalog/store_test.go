package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmacia/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Vitamina C 1000mg", Description: "Vitamina C pura com 60 cápsulas", Price: decimal.RequireFromString("45.90"), Stock: 50, Category: "suplementos", SKU: "VIT-C-1000"},
		{ID: "2", Name: "Dipirona 500mg", Description: "Analgésico e antitérmico - 20 comprimidos", Price: decimal.RequireFromString("8.50"), Stock: 100, Category: "medicamentos", SKU: "DIPI-500"},
		{ID: "3", Name: "Sabonete Liquido", Description: "Sabonete líquido neutro 250ml", Price: decimal.RequireFromString("12.00"), Stock: 75, Category: "higiene", SKU: "SOAP-LIQUID"},
		{ID: "4", Name: "Paracetamol 750mg", Price: decimal.RequireFromString("15.00"), Stock: 30, Category: "medicamentos", SKU: "PARA-750"},
	}
}

func ids(ps []domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApplyFilter_ZeroFilterReturnsSnapshot(t *testing.T) {
	s := NewStore()
	s.Load(sampleProducts(), "")
	assert.Equal(t, sampleProducts(), s.ApplyFilter(domain.Filter{}))
}

func TestApplyFilter_Conjunction(t *testing.T) {
	s := NewStore()
	products := sampleProducts()
	s.Load(products, "")

	max := decimal.RequireFromString("12")
	filters := []domain.Filter{
		{Search: "vita"},
		{Search: "COMPRIMIDOS"},
		{Category: "medicamentos"},
		{MaxPrice: &max},
		{Search: "mg", Category: "medicamentos", MaxPrice: &max},
		{Search: "sabonete", Category: "medicamentos"},
	}
	for _, f := range filters {
		got := s.ApplyFilter(f)
		want := make([]string, 0)
		for _, p := range products {
			if f.Matches(p) {
				want = append(want, p.ID)
			}
		}
		assert.Equal(t, want, ids(got), "filter %+v", f)
	}

	assert.Equal(t, []string{"1"}, ids(s.ApplyFilter(domain.Filter{Search: "vita"})))
	assert.Equal(t, []string{"2"}, ids(s.ApplyFilter(domain.Filter{Search: "mg", Category: "medicamentos", MaxPrice: &max})))
	assert.Empty(t, s.ApplyFilter(domain.Filter{Search: "sabonete", Category: "medicamentos"}))
}

func TestApplyFilter_SearchScenario(t *testing.T) {
	s := NewStore()
	s.Load([]domain.Product{
		{ID: "1", Name: "Vitamin C", Price: decimal.RequireFromString("45.90")},
		{ID: "2", Name: "Dipirona", Price: decimal.RequireFromString("8.50")},
	}, "")
	got := s.ApplyFilter(domain.Filter{Search: "vita"})
	require.Len(t, got, 1)
	assert.Equal(t, "Vitamin C", got[0].Name)
}

func TestLoad_ReplacesAndIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Load(sampleProducts(), "tok-1")
	f := domain.Filter{Category: "medicamentos"}
	first := s.ApplyFilter(f)

	s.Load(sampleProducts(), "tok-1")
	assert.Equal(t, first, s.ApplyFilter(f))

	s.Load(sampleProducts()[:1], "")
	assert.Len(t, s.Snapshot(), 1)
	assert.Equal(t, "", s.NextToken())
}

func TestLoad_CopiesInput(t *testing.T) {
	s := NewStore()
	in := sampleProducts()
	s.Load(in, "")
	in[0].Name = "changed"
	assert.Equal(t, "Vitamina C 1000mg", s.Snapshot()[0].Name)
}

func TestVisible_InvalidatedByLoad(t *testing.T) {
	s := NewStore()
	s.Load(sampleProducts(), "")
	assert.Equal(t, []string{"2", "4"}, ids(s.SetFilter(domain.Filter{Category: "medicamentos"})))

	s.Load(sampleProducts()[:2], "")
	assert.Equal(t, []string{"2"}, ids(s.Visible()))

	assert.Len(t, s.ResetFilter(), 2)
	assert.True(t, s.Filter().IsZero())
}

func TestCategories(t *testing.T) {
	s := NewStore()
	s.Load(sampleProducts(), "")
	assert.Equal(t, []string{"suplementos", "medicamentos", "higiene"}, s.Categories())
}
