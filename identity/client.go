// Package identity talks to the external user service. The catalog never
// stores users; it only checks that one exists before enrolling it.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-course-catalog/catalog"
)

// UserRecord is the subset of the user service's representation the
// catalog cares about.
type UserRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Client resolves users by id.
type Client interface {
	GetUser(ctx context.Context, id string) (*UserRecord, error)
}

// Disabled is the Client used when no user service is configured. Every
// lookup fails with an infrastructure error so flows that require user
// verification degrade to an error instead of a panic.
type Disabled struct{}

// GetUser always fails.
func (Disabled) GetUser(_ context.Context, _ string) (*UserRecord, error) {
	return nil, catalog.NewInfrastructure("user", "fetch",
		errors.New("no identity service configured"))
}

// HTTPClient is a Client over the user service's REST API.
type HTTPClient struct {
	rest *resty.Client
}

// NewHTTPClient returns a client against the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetHeader("Accept", "application/json")
	return &HTTPClient{rest: rest}
}

// GetUser fetches one user. A 404 maps to a not-found error; any other
// failure is infrastructure.
func (c *HTTPClient) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	var user UserRecord
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&user).
		SetPathParam("id", id).
		Get("/users/{id}")
	if err != nil {
		return nil, catalog.NewInfrastructure("user", "fetch", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, catalog.NewNotFound("user", id)
	}
	if resp.IsError() {
		return nil, catalog.NewInfrastructure("user", "fetch",
			fmt.Errorf("user service returned %s", resp.Status()))
	}
	return &user, nil
}
