// Package graphiti is an HTTP client for the graphiti knowledge-graph
// service. The service extracts entities and relationships from episodes and
// serves graph search on top of Neo4j.
package graphiti

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"papyrus/apps/backend/internal/document"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// Episode ingestion triggers LLM-backed entity extraction on the
		// service side, which can take a while for large documents.
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// AddEpisode submits one episode for entity and relationship extraction.
func (c *Client) AddEpisode(ctx context.Context, ep document.Episode) (*document.EpisodeReceipt, error) {
	jsonBody, err := json.Marshal(ep)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/episodes", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apiError("add episode", resp)
	}

	var receipt document.EpisodeReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, err
	}
	if receipt.EpisodeID == "" {
		receipt.EpisodeID = ep.ID
	}
	return &receipt, nil
}

// Search queries the knowledge graph and returns entity hits. Entities the
// service returns without a name or type get placeholder values so downstream
// fusion always has something to render.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]document.GraphResult, error) {
	reqBody := map[string]interface{}{
		"query": query,
		"limit": limit,
	}

	jsonBody, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("search", resp)
	}

	var result struct {
		Results []document.GraphResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	for i := range result.Results {
		if result.Results[i].EntityName == "" {
			result.Results[i].EntityName = "Unknown"
		}
		if result.Results[i].EntityType == "" {
			result.Results[i].EntityType = "Entity"
		}
	}
	return result.Results, nil
}

// EntityRelationships returns the edges attached to one named entity.
func (c *Client) EntityRelationships(ctx context.Context, entityName string) ([]document.Relationship, error) {
	u := c.baseURL + "/entities/" + url.PathEscape(entityName) + "/relationships"
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("entity relationships", resp)
	}

	var result struct {
		Relationships []document.Relationship `json:"relationships"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Relationships, nil
}

// Ping checks the service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("health check", resp)
	}
	return nil
}

func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("graphiti %s error: %d: %s", op, resp.StatusCode, string(body))
}
