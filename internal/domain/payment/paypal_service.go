// internal/domain/payment/paypal_service.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/luxury-storefront/internal/config"
)

// PayPalService talks to the PayPal Orders v2 REST API
type PayPalService struct {
	config     *config.Config
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalService creates a new PayPal client
func NewPayPalService(cfg *config.Config) *PayPalService {
	return &PayPalService{
		config:   cfg,
		clientID: cfg.External.PayPal.ClientID,
		secret:   cfg.External.PayPal.Secret,
		baseURL:  cfg.External.PayPal.BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OrderBreakdown is the amount detail PayPal requires when a purchase unit
// carries an itemized total. item_total + shipping + tax_total - discount
// must equal the unit amount or PayPal rejects the order.
type OrderBreakdown struct {
	ItemTotal decimal.Decimal
	Shipping  decimal.Decimal
	TaxTotal  decimal.Decimal
	Discount  decimal.Decimal
}

// Total returns the amount the breakdown must sum to
func (b OrderBreakdown) Total() decimal.Decimal {
	return b.ItemTotal.Add(b.Shipping).Add(b.TaxTotal).Sub(b.Discount)
}

// PayPalOrder is the provider-side order created before customer approval
type PayPalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CaptureResult carries the capture (receipt) identifiers after the customer
// approves payment
type CaptureResult struct {
	OrderID   string
	ReceiptID string
	Status    string
	PayerMail string
}

// CreateOrder creates a PayPal order for the given amount breakdown and
// returns the provider order id the client uses for approval.
func (p *PayPalService) CreateOrder(ctx context.Context, currency string, breakdown OrderBreakdown) (*PayPalOrder, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]interface{}{
					"currency_code": currency,
					"value":         breakdown.Total().StringFixed(2),
					"breakdown": map[string]interface{}{
						"item_total": moneyValue(currency, breakdown.ItemTotal),
						"shipping":   moneyValue(currency, breakdown.Shipping),
						"tax_total":  moneyValue(currency, breakdown.TaxTotal),
						"discount":   moneyValue(currency, breakdown.Discount),
					},
				},
			},
		},
	}

	respBody, err := p.call(ctx, http.MethodPost, "/v2/checkout/orders", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create PayPal order: %w", err)
	}

	var ord PayPalOrder
	if err := json.Unmarshal(respBody, &ord); err != nil {
		return nil, fmt.Errorf("failed to parse PayPal order response: %w", err)
	}

	return &ord, nil
}

// CaptureOrder captures an approved PayPal order and returns the capture id,
// which we record as the payment receipt.
func (p *PayPalService) CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error) {
	endpoint := fmt.Sprintf("/v2/checkout/orders/%s/capture", providerOrderID)
	respBody, err := p.call(ctx, http.MethodPost, endpoint, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to capture PayPal order: %w", err)
	}

	var captureResp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Payer  struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(respBody, &captureResp); err != nil {
		return nil, fmt.Errorf("failed to parse PayPal capture response: %w", err)
	}

	result := &CaptureResult{
		OrderID:   captureResp.ID,
		Status:    captureResp.Status,
		PayerMail: captureResp.Payer.EmailAddress,
	}

	for _, unit := range captureResp.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			result.ReceiptID = capture.ID
			break
		}
	}

	if result.ReceiptID == "" {
		return nil, fmt.Errorf("PayPal capture response carried no capture id")
	}

	return result, nil
}

// call makes an authenticated request against the PayPal REST API
func (p *PayPalService) call(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody []byte
	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call PayPal API: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("PayPal API returned status %d: %s", resp.StatusCode, respBody.String())
	}

	return respBody.Bytes(), nil
}

// token returns a cached OAuth access token, fetching a new one when the
// cached copy is within a minute of expiring.
func (p *PayPalService) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry.Add(-time.Minute)) {
		return p.accessToken, nil
	}

	if p.clientID == "" || p.secret == "" {
		return "", fmt.Errorf("PayPal credentials not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.clientID, p.secret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch PayPal token: %w", err)
	}
	defer resp.Body.Close()

	var respBody bytes.Buffer
	if _, err := respBody.ReadFrom(resp.Body); err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("PayPal token request returned status %d: %s", resp.StatusCode, respBody.String())
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody.Bytes(), &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	p.accessToken = tokenResp.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return p.accessToken, nil
}

func moneyValue(currency string, amount decimal.Decimal) map[string]string {
	return map[string]string{
		"currency_code": currency,
		"value":         amount.StringFixed(2),
	}
}
