package apiclient

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"farmacia/internal/domain"
)

// Формат API товаров (поля на португальском, как отдаёт бэкенд).
// Числа приходят из DynamoDB через float, поэтому estoque может быть "50.0".
type wireProduct struct {
	ProdutoID string      `json:"produto_id"`
	Nome      string      `json:"nome"`
	Descricao string      `json:"descricao,omitempty"`
	Preco     json.Number `json:"preco"`
	Estoque   json.Number `json:"estoque"`
	Categoria string      `json:"categoria,omitempty"`
	SKU       string      `json:"sku,omitempty"`
}

type listResponse struct {
	Produtos []wireProduct `json:"produtos"`
	Count    int           `json:"count"`
	LastKey  *string       `json:"lastKey"`
}

type createResponse struct {
	Mensagem  string `json:"mensagem"`
	ProdutoID string `json:"produto_id"`
}

type updateResponse struct {
	Mensagem string      `json:"mensagem"`
	Produto  wireProduct `json:"produto"`
}

type errorResponse struct {
	Erro string `json:"erro"`
}

func toWire(p domain.Product) wireProduct {
	return wireProduct{
		ProdutoID: p.ID,
		Nome:      p.Name,
		Descricao: p.Description,
		Preco:     json.Number(p.Price.String()),
		Estoque:   json.Number(fmt.Sprint(p.Stock)),
		Categoria: p.Category,
		SKU:       p.SKU,
	}
}

func (w wireProduct) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:          w.ProdutoID,
		Name:        w.Nome,
		Description: w.Descricao,
		Category:    w.Categoria,
		SKU:         w.SKU,
	}
	if w.Preco != "" {
		price, err := decimal.NewFromString(w.Preco.String())
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: bad preco %q: %w", w.ProdutoID, w.Preco, err)
		}
		p.Price = price
	}
	if w.Estoque != "" {
		stock, err := decimal.NewFromString(w.Estoque.String())
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: bad estoque %q: %w", w.ProdutoID, w.Estoque, err)
		}
		p.Stock = stock.IntPart()
	}
	return p, nil
}

// updateBody carries only the fields present in u.
func updateBody(u domain.ProductUpdate) map[string]any {
	body := make(map[string]any)
	if u.Name != nil {
		body["nome"] = *u.Name
	}
	if u.Description != nil {
		body["descricao"] = *u.Description
	}
	if u.Price != nil {
		body["preco"] = json.Number(u.Price.String())
	}
	if u.Stock != nil {
		body["estoque"] = *u.Stock
	}
	if u.Category != nil {
		body["categoria"] = *u.Category
	}
	return body
}
