package zoho

import (
	"context"
	"fmt"
	"net/http"
	"time"

	httpclient "gym-fulfillment/internal/common/http"
)

const DefaultBaseURL = "https://www.zohoapis.com/crm/v3"

type CRMClient struct {
	http *httpclient.Client
}

// Lead is a record in the CRM Leads module. Last_Name is mandatory there.
type Lead struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"Email"`
	FirstName   string `json:"First_Name,omitempty"`
	LastName    string `json:"Last_Name"`
	Source      string `json:"Lead_Source,omitempty"`
	Company     string `json:"Company,omitempty"`
	Description string `json:"Description,omitempty"`
}

type CreateLeadResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

func NewCRMClient(baseURL, oauthToken string, timeout time.Duration) *CRMClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CRMClient{
		http: httpclient.NewClient(baseURL, timeout).
			WithHeader("Authorization", "Zoho-oauthtoken "+oauthToken),
	}
}

// CreateLead inserts one lead and returns the CRM record id.
func (c *CRMClient) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	payload := map[string]interface{}{
		"data": []Lead{*lead},
	}

	var createResp CreateLeadResponse
	if err := c.http.PostJSON(ctx, "/Leads", payload, &createResp, http.StatusCreated, http.StatusOK); err != nil {
		return "", fmt.Errorf("failed to create lead: %w", err)
	}

	if len(createResp.Data) == 0 {
		return "", fmt.Errorf("no data in response")
	}

	if createResp.Data[0].Status != "success" {
		return "", fmt.Errorf("lead creation failed: %s", createResp.Data[0].Message)
	}

	return createResp.Data[0].Details.ID, nil
}
