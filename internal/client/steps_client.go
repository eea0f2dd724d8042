package client

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
)

// StepsClient is a client for the step definitions endpoint
type StepsClient struct {
	client *httpclient.Client
}

// NewStepsClient creates a new steps client
func NewStepsClient(c *httpclient.Client) *StepsClient {
	return &StepsClient{client: c}
}

// GetStep fetches one step by id
func (c *StepsClient) GetStep(ctx context.Context, id int) (*Step, error) {
	var step Step
	if err := c.client.Get(ctx, fmt.Sprintf("/steps/%d", id), nil, &step); err != nil {
		return nil, fmt.Errorf("failed to get step %d: %w", id, err)
	}
	return &step, nil
}
