// Package vectordb provides the Qdrant vector index destination.
package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cinevec/cinevec/pkg/models"
	"github.com/cinevec/cinevec/pkg/uploader"
)

var _ uploader.Destination[models.UploadItem] = &QdrantDestination{}

// QdrantDestination upserts record embeddings into a Qdrant collection over
// its HTTP API.
type QdrantDestination struct {
	client         *http.Client
	endpoint       string
	collectionName string
}

// Config holds the Qdrant connection settings.
type Config struct {
	Endpoint       string
	CollectionName string
	TimeoutSeconds int
}

type qdrantCreateCollectionRequest struct {
	Vectors struct {
		Size     int    `json:"size"`
		Distance string `json:"distance"`
	} `json:"vectors"`
}

type qdrantUpsertRequest struct {
	Points []qdrantPoint `json:"points"`
}

type qdrantPoint struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

func NewQdrantDestination(cfg Config) (*QdrantDestination, error) {
	if cfg.Endpoint == "" {
		return nil, models.NewBadConfigError("qdrant endpoint is not set", nil)
	}
	if cfg.CollectionName == "" {
		return nil, models.NewBadConfigError("qdrant collection name is not set", nil)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &QdrantDestination{
		client:         &http.Client{Timeout: timeout},
		endpoint:       cfg.Endpoint,
		collectionName: cfg.CollectionName,
	}, nil
}

func (q *QdrantDestination) Name() string {
	return "qdrant:" + q.collectionName
}

// Upsert writes one batch of items as Qdrant points. Record IDs are mapped
// to deterministic UUIDs since Qdrant point IDs must be UUIDs or integers;
// the original ID is preserved in the payload.
func (q *QdrantDestination) Upsert(ctx context.Context, items []models.UploadItem) error {
	if len(items) == 0 {
		return nil
	}

	points := make([]qdrantPoint, len(items))
	for i, item := range items {
		payload := map[string]interface{}{"record_id": item.ID}
		for k, v := range item.Metadata {
			payload[k] = v
		}
		points[i] = qdrantPoint{
			ID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(item.ID)).String(),
			Vector:  item.Vector,
			Payload: payload,
		}
	}

	return q.doRequest(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s/points?wait=true", q.collectionName),
		qdrantUpsertRequest{Points: points}, nil)
}

// EnsureCollection creates the collection if it doesn't exist.
func (q *QdrantDestination) EnsureCollection(ctx context.Context, dimensions int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/collections/%s", q.endpoint, q.collectionName), nil)
	if err != nil {
		return err
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	reqBody := qdrantCreateCollectionRequest{}
	reqBody.Vectors.Size = dimensions
	reqBody.Vectors.Distance = "Cosine"

	return q.doRequest(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s", q.collectionName),
		reqBody, nil)
}

// Health checks if Qdrant is available.
func (q *QdrantDestination) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.endpoint+"/readyz", nil)
	if err != nil {
		return err
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant returned status %d", resp.StatusCode)
	}
	return nil
}

// doRequest performs an HTTP request against the Qdrant API. Any non-2xx
// status is an error; the coordinator's retry policy treats all errors
// identically.
func (q *QdrantDestination) doRequest(
	ctx context.Context,
	method, path string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.endpoint+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
