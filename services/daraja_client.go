package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// PaymentGateway initiates a push payment on the payer's device. The call
// returns once the gateway accepts the push for delivery; the actual
// pay/decline arrives later on the callback endpoint.
type PaymentGateway interface {
	InitiateSTKPush(ctx context.Context, amount float64, phoneNumber, accountReference string) (*STKPushResponse, error)
}

type STKPushResponse struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResponseCode      string `json:"ResponseCode"`
	ResponseDesc      string `json:"ResponseDescription"`
}

// STKCallbackPayload is the gateway's asynchronous result. ResultCode 0
// means the payer confirmed; anything else is a decline or timeout.
type STKCallbackPayload struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type DarajaConfig struct {
	BaseURL        string
	ShortCode      string
	Passkey        string
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string
	Timeout        time.Duration
}

// DarajaService speaks the mobile-money STK push API. The HTTP client
// carries an explicit timeout so a dead gateway surfaces as an error
// instead of a hung request.
type DarajaService struct {
	cfg    DarajaConfig
	client *http.Client
}

func NewDarajaService(cfg DarajaConfig) *DarajaService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &DarajaService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type darajaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (s *DarajaService) accessToken(ctx context.Context) (string, error) {
	url := s.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.cfg.ConsumerKey, s.cfg.ConsumerSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway token request returned %d", resp.StatusCode)
	}

	var token darajaTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

func (s *DarajaService) InitiateSTKPush(ctx context.Context, amount float64, phoneNumber, accountReference string) (*STKPushResponse, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(s.cfg.ShortCode + s.cfg.Passkey + timestamp))

	body := stkPushRequest{
		BusinessShortCode: s.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Ceil(amount)), // gateway only accepts whole units
		PartyA:            phoneNumber,
		PartyB:            s.cfg.ShortCode,
		PhoneNumber:       phoneNumber,
		CallBackURL:       s.cfg.CallbackURL,
		AccountReference:  accountReference,
		TransactionDesc:   "Order " + accountReference,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := s.cfg.BaseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway push request returned %d", resp.StatusCode)
	}

	var pushResp STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, err
	}
	if pushResp.ResponseCode != "0" {
		return nil, fmt.Errorf("gateway rejected push: %s", pushResp.ResponseDesc)
	}
	return &pushResp, nil
}
