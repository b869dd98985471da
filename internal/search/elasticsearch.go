package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"supperclub/internal/config"
	"supperclub/internal/models"
)

// ElasticsearchClient maintains the slot discovery index.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":              map[string]interface{}{"type": "long"},
				"title":           map[string]interface{}{"type": "text"},
				"description":     map[string]interface{}{"type": "text"},
				"starts_at":       map[string]interface{}{"type": "date", "format": "strict_date_optional_time||epoch_millis"},
				"seats_remaining": map[string]interface{}{"type": "integer"},
				"status":          map[string]interface{}{"type": "keyword"},
				"base_price":      map[string]interface{}{"type": "long"},
				"currency":        map[string]interface{}{"type": "keyword"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(body),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("index creation returned status %s", createRes.Status())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// IndexSlot writes the discovery document for a slot. Called best-effort
// after slot creation and status changes.
func (c *ElasticsearchClient) IndexSlot(ctx context.Context, slot *models.EventSlot) error {
	doc := models.SlotSummary{
		ID:             slot.ID,
		Title:          slot.Title,
		Description:    slot.Description,
		StartsAt:       slot.StartsAt,
		SeatsRemaining: slot.SeatsRemaining,
		Status:         slot.Status,
		BasePrice:      slot.BasePrice,
		Currency:       slot.Currency,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal slot document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(slot.ID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index slot %d: %w", slot.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing slot %d returned status %s", slot.ID, res.Status())
	}

	return nil
}

// SearchSlots runs a paginated full-text query over open slots. An empty
// query matches everything ordered by start time.
func (c *ElasticsearchClient) SearchSlots(ctx context.Context, query string, page, pageSize int) ([]models.SlotSummary, error) {
	var must interface{}
	if query != "" {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "description"},
			},
		}
	} else {
		must = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	searchBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": must,
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"status": models.SlotStatusOpen},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"starts_at": map[string]interface{}{"order": "asc"}},
		},
		"from": (page - 1) * pageSize,
		"size": pageSize,
	}

	body, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.config.Index),
		c.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search returned status %s", res.Status())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.SlotSummary `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	summaries := make([]models.SlotSummary, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		summaries = append(summaries, hit.Source)
	}

	return summaries, nil
}
