package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/scope_auth/internal/events"
)

type Config struct {
	URL      string
	User     string
	Password string
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*elasticsearch.Client, error) {
	logger.Info("es_connecting", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info returned %s: %s", res.Status(), body)
	}

	logger.Info("es_connected", "url", cfg.URL)
	return client, nil
}

// Indexer stores every published event as a document in one index.
type Indexer struct {
	index esapi.Index
	name  string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	return &Indexer{index: client.Index, name: index}
}

func (i *Indexer) PublishEvent(ctx context.Context, topic string, event events.Event) error {
	doc := struct {
		Topic string `json:"topic"`
		events.Event
	}{Topic: topic, Event: event}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("es: json.Marshal failed: %w", err)
	}

	res, err := i.index(i.name, bytes.NewReader(data), i.index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index %s: %w", i.name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: index %s returned %s: %s", i.name, res.Status(), body)
	}
	return nil
}
