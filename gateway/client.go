package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the hosted-checkout provider. It is constructed once
// in main and injected; nothing here is lazily initialized.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type LineItem struct {
	Name       string `json:"name"`
	UnitAmount string `json:"unit_amount"` // decimal string, e.g. "10.00"
	Quantity   int    `json:"quantity"`
}

// Metadata is the serialized order intent the provider hands back on
// completion. The gateway never mutates our stores; everything needed
// to materialize the order later rides along here.
type Metadata struct {
	UserID          *uint         `json:"user_id,omitempty"`
	ProductIDs      []string      `json:"product_ids"`
	Quantities      []int         `json:"quantities"`
	ShippingFee     string        `json:"shipping_fee"`
	ShippingAddress *AddressInput `json:"shipping_address,omitempty"`
}

type AddressInput struct {
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type sessionRequest struct {
	LineItems  []LineItem `json:"line_items"`
	Metadata   Metadata   `json:"metadata"`
	SuccessURL string     `json:"success_url"`
	CancelURL  string     `json:"cancel_url"`
}

// CreateSession opens a hosted checkout session and returns its id and
// redirect URL.
func (c *Client) CreateSession(ctx context.Context, items []LineItem, meta Metadata, successURL, cancelURL string) (*Session, error) {
	body, err := json.Marshal(sessionRequest{
		LineItems:  items,
		Metadata:   meta,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, b)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}
