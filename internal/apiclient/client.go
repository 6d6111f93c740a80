// Package apiclient talks to the remote product API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farmacia/internal/domain"
	"farmacia/internal/repository"
	"farmacia/internal/session"
)

const RequestIDHeader = "X-Request-ID"

// Client HTTP-клиент API товаров. Каждый запрос несёт bearer-токен из сессии.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  session.TokenSource
	log     *zap.Logger
}

var _ repository.ProductCatalog = (*Client)(nil)

func New(baseURL string, timeout time.Duration, tokens session.TokenSource, log *zap.Logger) *Client {
	if tokens == nil {
		tokens = session.Static("")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

func (c *Client) ListProducts(ctx context.Context, limit int, token string) (domain.ProductPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(repository.ClampLimit(limit)))
	if token != "" {
		q.Set("lastKey", token)
	}
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/produtos", q, nil, &resp); err != nil {
		return domain.ProductPage{}, err
	}
	page := domain.ProductPage{Products: make([]domain.Product, 0, len(resp.Produtos))}
	for _, w := range resp.Produtos {
		p, err := w.toDomain()
		if err != nil {
			return domain.ProductPage{}, badPayload(err.Error())
		}
		page.Products = append(page.Products, p)
	}
	if resp.LastKey != nil {
		page.NextToken = *resp.LastKey
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var w wireProduct
	if err := c.do(ctx, http.MethodGet, "/produtos/"+url.PathEscape(id), nil, nil, &w); err != nil {
		return nil, err
	}
	p, err := w.toDomain()
	if err != nil {
		return nil, badPayload(err.Error())
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (string, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/produtos", nil, toWire(p), &resp); err != nil {
		return "", err
	}
	c.log.Info("product created", zap.String("product_id", resp.ProdutoID))
	return resp.ProdutoID, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	var resp updateResponse
	if err := c.do(ctx, http.MethodPut, "/produtos/"+url.PathEscape(id), nil, updateBody(u), &resp); err != nil {
		return nil, err
	}
	p, err := resp.Produto.toDomain()
	if err != nil {
		return nil, badPayload(err.Error())
	}
	c.log.Info("product updated", zap.String("product_id", id))
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/produtos/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	c.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

// do выполняет запрос и декодирует ответ в out. Любой сбой возвращается как *domain.RequestError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &domain.RequestError{Message: fmt.Sprintf("encode body: %v", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &domain.RequestError{Message: err.Error()}
	}
	token, err := c.tokens.Token()
	if err != nil {
		return &domain.RequestError{Message: err.Error()}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(RequestIDHeader, reqID)

	log := c.log.With(zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID))
	log.Debug("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("api transport error", zap.Error(err))
		return &domain.RequestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return badPayload(fmt.Sprintf("read body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &domain.RequestError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
		log.Warn("api error", zap.Int("status", resp.StatusCode), zap.String("message", re.Message))
		return re
	}
	log.Debug("api success", zap.Int("status", resp.StatusCode))

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return badPayload("invalid json response")
		}
		return badPayload(fmt.Sprintf("decode response: %v", err))
	}
	return nil
}

// badPayload: ответ 2xx, который не удалось разобрать, считаем ошибкой шлюза
func badPayload(msg string) *domain.RequestError {
	return &domain.RequestError{StatusCode: http.StatusBadGateway, Message: msg}
}

func errorMessage(status int, raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Erro != "" {
		return e.Erro
	}
	return fmt.Sprintf("Erro HTTP %d", status)
}
