package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/pkg/httpclient"
)

// Doer sends HTTP requests. *httpclient.CircuitBreakerClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// APIClient calls the community shop REST API.
type APIClient struct {
	baseURL string
	http    Doer
}

// NewAPIClient creates a client for the API rooted at baseURL.
func NewAPIClient(baseURL string, doer Doer) *APIClient {
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: doer}
}

// Signup registers a user.
func (c *APIClient) Signup(ctx context.Context, in domain.SignupInput) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.send(ctx, http.MethodPost, "/api/users/signup", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token.
func (c *APIClient) Login(ctx context.Context, in domain.LoginInput) (*domain.AuthResult, error) {
	var out domain.AuthResult
	if err := c.send(ctx, http.MethodPost, "/api/users/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct lists a product as the token's owner.
func (c *APIClient) CreateProduct(ctx context.Context, token string, in domain.CreateProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := c.send(ctx, http.MethodPost, "/api/products", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddReview posts a review and returns the updated product.
func (c *APIClient) AddReview(ctx context.Context, token, productID string, in domain.AddReviewInput) (*domain.Product, error) {
	var out domain.Product
	if err := c.send(ctx, http.MethodPost, "/api/products/"+productID+"/reviews", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) send(ctx context.Context, method, path, token string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, method+" "+path)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
