// Package search mirrors generated headlines into Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"headline":      {"type": "text"},
			"category":      {"type": "keyword"},
			"created_at":    {"type": "date"},
			"keywords_used": {"type": "object", "enabled": false},
			"enhanced":      {"type": "boolean"}
		}
	}
}`

type HeadlineIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewHeadlineIndex(client *elasticsearch.Client, index string, log logger.Logger) *HeadlineIndex {
	return &HeadlineIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search_index", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when missing.
func (x *HeadlineIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: x.index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}

	x.logger.Info("search index created", nil)
	return nil
}

// IndexBatch bulk-indexes headlines that already carry ids.
func (x *HeadlineIndex) IndexBatch(ctx context.Context, headlines []models.Headline) error {
	if len(headlines) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, h := range headlines {
		if err := enc.Encode(map[string]interface{}{
			"index": map[string]interface{}{"_index": x.index, "_id": h.ID},
		}); err != nil {
			return err
		}
		if err := enc.Encode(h); err != nil {
			return err
		}
	}

	res, err := esapi.BulkRequest{Body: &body}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.String())
	}

	var out struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if out.Errors {
		failed := 0
		for _, item := range out.Items {
			for _, r := range item {
				if r.Status >= 300 {
					failed++
				}
			}
		}
		return fmt.Errorf("bulk index: %d of %d documents failed", failed, len(headlines))
	}
	return nil
}

// Search runs a match query on the headline text, optionally filtered by
// category.
func (x *HeadlineIndex) Search(ctx context.Context, text, category string, limit int) ([]models.Headline, error) {
	if limit <= 0 {
		limit = 20
	}

	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{"match": map[string]interface{}{"headline": text}},
		},
	}
	if category != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"category": category}},
		}
	}
	query, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	})

	res, err := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(query),
		Size:  &limit,
	}.Do(ctx, x.client)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: %s: %s", res.Status(), raw)
	}

	var out struct {
		Hits struct {
			Hits []struct {
				ID     string          `json:"_id"`
				Source models.Headline `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	headlines := make([]models.Headline, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		h := hit.Source
		if h.ID == "" {
			h.ID = hit.ID
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}
