package itop

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"bizhours-exporter/internal/config"
)

// ErrMissingCredentials is returned when the iTop environment is not set.
var ErrMissingCredentials = errors.New("missing iTop API environment variables (ITOP_API_URL, ITOP_API_USER, ITOP_API_PWD)")

// Client talks to the iTop REST/JSON endpoint.
type Client struct {
	BaseURL  string
	Username string
	Password string
	Version  string
	HTTP     *http.Client
	log      *zap.Logger
}

func NewClient(baseURL, username, password string, insecureSkipVerify bool, log *zap.Logger) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Version:  "1.3",
		HTTP:     &http.Client{Transport: tr, Timeout: 30 * time.Second},
		log:      log,
	}
}

// NewClientFromEnv reads ITOP_API_URL, ITOP_API_USER and ITOP_API_PWD.
func NewClientFromEnv(insecureSkipVerify bool, log *zap.Logger) (*Client, error) {
	baseURL := config.GetEnvString("ITOP_API_URL", "")
	username := config.GetEnvString("ITOP_API_USER", "")
	password := config.GetEnvString("ITOP_API_PWD", "")
	if baseURL == "" || username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return NewClient(baseURL, username, password, insecureSkipVerify, log), nil
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Post runs an iTop operation (e.g. "core/get") and returns the raw body.
func (c *Client) Post(ctx context.Context, operation string, params map[string]interface{}) ([]byte, error) {
	payload := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		payload[k] = v
	}
	payload["operation"] = operation
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("version", c.Version)
	form.Set("auth_user", c.Username)
	form.Set("auth_pwd", c.Password)
	form.Set("json_data", string(jsonData))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itop %s: unexpected status %s", operation, resp.Status)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("itop %s: decode response: %w", operation, err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("itop %s: code %d: %s", operation, env.Code, env.Message)
	}
	return body, nil
}
