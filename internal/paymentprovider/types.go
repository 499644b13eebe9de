package paymentprovider

import (
	"encoding/json"
	"fmt"
)

// OrderRequest тело запроса на создание заказа. Amount в минимальных единицах валюты.
type OrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Order заказ шлюза. Raw хранит ответ целиком, клиенту он отдаётся без изменений.
type Order struct {
	ID       string          `json:"id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status"`
	Raw      json.RawMessage `json:"-"`
}

// MarshalJSON отдаёт исходный ответ шлюза, если он есть.
func (o Order) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	type plain Order
	return json.Marshal(plain(o))
}

// APIError не-2xx ответ шлюза.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway responded with status %d", e.StatusCode)
}
