package config

import (
	"os"
	"strconv"
	"time"
)

// ElasticsearchConfig holds connection settings for the slot search index.
type ElasticsearchConfig struct {
	URL        string
	Index      string
	Username   string
	Password   string
	MaxRetries int
	Timeout    time.Duration
}

// LoadElasticsearchConfig reads Elasticsearch settings from environment variables.
func LoadElasticsearchConfig() ElasticsearchConfig {
	maxRetries := 3
	if val := os.Getenv("ELASTICSEARCH_MAX_RETRIES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			maxRetries = parsed
		}
	}

	timeout := 30 * time.Second
	if val := os.Getenv("ELASTICSEARCH_TIMEOUT"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			timeout = parsed
		}
	}

	return ElasticsearchConfig{
		URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
		Index:      getEnv("ELASTICSEARCH_INDEX", "event_slots"),
		Username:   os.Getenv("ELASTICSEARCH_USERNAME"),
		Password:   os.Getenv("ELASTICSEARCH_PASSWORD"),
		MaxRetries: maxRetries,
		Timeout:    timeout,
	}
}
