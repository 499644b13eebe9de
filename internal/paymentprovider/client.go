// Package paymentprovider клиент платёжного шлюза: создание заказов
// и проверка подписи, которую шлюз отдаёт виджету после оплаты.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured возвращается, если у клиента нет ключа или секрета.
var ErrNotConfigured = errors.New("payment gateway credentials are not configured")

const maxErrorBody = 4 << 10

// Client http-клиент платёжного шлюза.
type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент шлюза. apiURL без завершающего слэша, например https://api.razorpay.com/v1.
func NewClient(apiURL, keyID, keySecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured сообщает, заданы ли ключ и секрет.
func (c *Client) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateOrder создаёт заказ в шлюзе. Ответ возвращается вместе с исходным JSON.
// Повторов нет: любой не-2xx ответ превращается в *APIError.
func (c *Client) CreateOrder(ctx context.Context, reqParams OrderRequest) (*Order, error) {
	const op = "paymentprovider.CreateOrder"
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/orders", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s: %w", op, &APIError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("%s: decode body: %w", op, err)
	}
	order.Raw = raw
	return &order, nil
}
