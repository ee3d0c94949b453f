package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/partify/internal/models"
)

// ProductIndex keeps a searchable copy of the catalog text fields.
type ProductIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{ES: client, Index: index}
}

type productDoc struct {
	Name        string          `json:"name"`
	PartNumber  string          `json:"partNumber"`
	Category    models.Category `json:"category"`
	Description string          `json:"description"`
	Makes       []string        `json:"compatibleMakes"`
}

func (x *ProductIndex) IndexProduct(ctx context.Context, p models.Product) error {
	doc := productDoc{
		Name:        p.Name,
		PartNumber:  p.PartNumber,
		Category:    p.Category,
		Description: p.Description,
		Makes:       p.CompatibleMakes,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("es: encode product: %w", err)
	}

	res, err := x.ES.Index(x.Index, &buf,
		x.ES.Index.WithContext(ctx),
		x.ES.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return fmt.Errorf("es: index product %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseErr("index product", res.StatusCode, res.Body)
	}
	return nil
}

func (x *ProductIndex) DeleteProduct(ctx context.Context, id string) error {
	res, err := x.ES.Delete(x.Index, id, x.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete product %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseErr("delete product", res.StatusCode, res.Body)
	}
	return nil
}

// SearchProductIDs runs a fuzzy multi_match and returns the total hit count
// with the ids of the requested page in relevance order.
func (x *ProductIndex) SearchProductIDs(ctx context.Context, query string, from, size int) (int64, []string, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "partNumber", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from":    from,
		"size":    size,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, responseErr("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return r.Hits.Total.Value, ids, nil
}

func responseErr(op string, status int, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("es: %s: status %d: %s", op, status, bytes.TrimSpace(msg))
}
