package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmacia/internal/domain"
	"farmacia/internal/session"
)

// fakeAPI mimics the product backend: Portuguese fields, {"erro": ...} bodies,
// DynamoDB-style numbers.
type fakeAPI struct {
	mu       sync.Mutex
	items    []gin.H
	lastAuth string
	lastReq  string
	lastBody map[string]any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fakeAPI{items: []gin.H{
		{"produto_id": "1", "nome": "Vitamina C 1000mg", "descricao": "Vitamina C pura com 60 cápsulas", "preco": 45.9, "estoque": 50.0, "categoria": "suplementos", "sku": "VIT-C-1000"},
		{"produto_id": "2", "nome": "Dipirona 500mg", "preco": 8.5, "estoque": 100, "categoria": "medicamentos", "sku": "DIPI-500"},
		{"produto_id": "3", "nome": "Sabonete Liquido", "preco": "12.00", "estoque": 75, "categoria": "higiene"},
	}}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		f.mu.Lock()
		f.lastAuth = c.GetHeader("Authorization")
		f.lastReq = c.GetHeader(RequestIDHeader)
		f.mu.Unlock()
		c.Next()
	})
	r.GET("/produtos", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		start := 0
		if lk := c.Query("lastKey"); lk != "" {
			start, _ = strconv.Atoi(lk)
		}
		end := start + limit
		if end > len(f.items) {
			end = len(f.items)
		}
		var last any
		if end < len(f.items) {
			last = strconv.Itoa(end)
		}
		c.JSON(http.StatusOK, gin.H{"produtos": f.items[start:end], "count": end - start, "lastKey": last})
	})
	r.GET("/produtos/:id", func(c *gin.Context) {
		for _, it := range f.items {
			if it["produto_id"] == c.Param("id") {
				c.JSON(http.StatusOK, it)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"erro": "Produto não encontrado"})
	})
	r.POST("/produtos", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"erro": "Dados inválidos"})
			return
		}
		f.mu.Lock()
		f.lastBody = body
		f.mu.Unlock()
		c.JSON(http.StatusCreated, gin.H{"mensagem": "Produto criado com sucesso", "produto_id": body["produto_id"]})
	})
	r.PUT("/produtos/:id", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		f.mu.Lock()
		f.lastBody = body
		f.mu.Unlock()
		out := gin.H{"produto_id": c.Param("id"), "nome": "Dipirona 500mg", "preco": body["preco"], "estoque": 100}
		c.JSON(http.StatusOK, gin.H{"mensagem": "Produto atualizado com sucesso", "produto": out})
	})
	r.DELETE("/produtos/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"mensagem": "Produto deletado com sucesso"})
	})
	r.GET("/broken/produtos", func(c *gin.Context) {
		c.String(http.StatusBadGateway, "<html>bad gateway</html>")
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func TestListProducts_Pages(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, 5*time.Second, session.Static("tok"), nil)
	ctx := context.Background()

	page, err := c.ListProducts(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Vitamina C 1000mg", page.Products[0].Name)
	assert.True(t, page.Products[0].Price.Equal(decimal.RequireFromString("45.90")))
	assert.Equal(t, int64(50), page.Products[0].Stock)
	assert.Equal(t, "2", page.NextToken)
	assert.Equal(t, "Bearer tok", f.lastAuth)
	assert.NotEmpty(t, f.lastReq)

	page, err = c.ListProducts(ctx, 2, page.NextToken)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.True(t, page.Products[0].Price.Equal(decimal.NewFromInt(12)))
	assert.Empty(t, page.NextToken)
}

func TestGetProduct_NotFound(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL, 5*time.Second, nil, nil)

	p, err := c.GetProduct(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "DIPI-500", p.SKU)

	_, err = c.GetProduct(context.Background(), "404")
	re, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Equal(t, "Produto não encontrado", re.Message)
}

func TestRequestError_NonJSONBody(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL+"/broken", 5*time.Second, nil, nil)

	_, err := c.ListProducts(context.Background(), 12, "")
	re, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
	assert.Equal(t, "Erro HTTP 502", re.Message)
}

func TestRequestError_MalformedProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/produtos", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"produtos": []gin.H{{"produto_id": "1", "preco": "abc"}}, "count": 1})
	})
	r.GET("/produtos/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"produto_id": c.Param("id"), "preco": 1, "estoque": "muitos"})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 5*time.Second, nil, nil)

	_, err := c.ListProducts(context.Background(), 12, "")
	re, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)

	_, err = c.GetProduct(context.Background(), "1")
	re, ok = domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
}

func TestRequestError_Transport(t *testing.T) {
	_, srv := newFakeAPI(t)
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, nil, nil)
	_, err := c.ListProducts(context.Background(), 12, "")
	re, ok := domain.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, 0, re.StatusCode)
}

func TestAdminMutations(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, 5*time.Second, session.Static("admin"), nil)
	ctx := context.Background()

	id, err := c.CreateProduct(ctx, domain.Product{
		ID: "9", Name: "Protetor Solar", Price: decimal.RequireFromString("59.90"), Stock: 10, Category: "higiene",
	})
	require.NoError(t, err)
	assert.Equal(t, "9", id)
	assert.Equal(t, "Protetor Solar", f.lastBody["nome"])
	assert.Equal(t, 59.9, f.lastBody["preco"])

	price := decimal.RequireFromString("7.25")
	p, err := c.UpdateProduct(ctx, "2", domain.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(price))
	assert.NotContains(t, f.lastBody, "nome")

	require.NoError(t, c.DeleteProduct(ctx, "2"))
}
