package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"productcatalog/internal/models"
)

// Index keeps the Elasticsearch product index in step with the database.
// Mutating handlers call IndexProduct/RemoveProduct after each write.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

func (i *Index) IndexProduct(ctx context.Context, p models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("search: encode product: %w", err)
	}

	res, err := i.ES.Index(
		i.Name,
		&buf,
		i.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index product: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search: index product: %s", res.Status())
	}
	return nil
}

func (i *Index) RemoveProduct(ctx context.Context, id uint) error {
	res, err := i.ES.Delete(
		i.Name,
		strconv.FormatUint(uint64(id), 10),
		i.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: remove product: %w", err)
	}
	defer res.Body.Close()

	// A document that was never indexed is fine to "remove".
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: remove product: %s", res.Status())
	}
	return nil
}

func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "video_link"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: query failed: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		products[n] = hit.Source
	}
	return r.Hits.Total.Value, products, nil
}
