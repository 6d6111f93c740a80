package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyCart возвращается при попытке оформить пустую корзину
var ErrEmptyCart = errors.New("cart empty")

// RequestError ошибка обращения к API товаров: не-2xx ответ или сбой транспорта (StatusCode == 0).
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// NotFound reports whether the upstream answered 404.
func (e *RequestError) NotFound() bool {
	return e.StatusCode == 404
}

// AsRequestError unwraps err into a *RequestError if it carries one.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
