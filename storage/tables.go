package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

const tablesPartition = "kv"

// Tables stores each key as one Azure Table Storage entity.
type Tables struct {
	client *aztables.Client
}

// NewTables creates a Tables store for the named table.
func NewTables(connStr, table string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: 15 * time.Second,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{client: svc.NewClient(table)}, nil
}

// EnsureTable creates the table when it does not exist yet.
func (t *Tables) EnsureTable(ctx context.Context) error {
	_, err := t.client.CreateTable(ctx, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (t *Tables) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := t.client.GetEntity(ctx, tablesPartition, key, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeEntity(resp.Value)
}

func (t *Tables) Set(ctx context.Context, key string, value []byte) error {
	payload, err := encodeEntity(key, value)
	if err != nil {
		return err
	}
	_, err = t.client.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

// Table string properties hold at most 64 KiB of UTF-16, so the encoded value
// is split across Value0..ValueN. The entity itself is capped at 1 MiB.
const (
	tableChunkChars = 32000
	tableMaxChunks  = 15
)

// ErrValueTooLarge is returned when a value does not fit in one table entity.
var ErrValueTooLarge = errors.New("value exceeds table entity limit")

func encodeEntity(key string, value []byte) ([]byte, error) {
	enc := base64.StdEncoding.EncodeToString(value)
	chunks := max(1, (len(enc)+tableChunkChars-1)/tableChunkChars)
	if chunks > tableMaxChunks {
		return nil, fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(value))
	}
	ent := map[string]any{
		"PartitionKey": tablesPartition,
		"RowKey":       key,
		"Chunks":       chunks,
	}
	for i := 0; i < chunks; i++ {
		ent[chunkProperty(i)] = enc[i*tableChunkChars : min((i+1)*tableChunkChars, len(enc))]
	}
	return json.Marshal(ent)
}

func decodeEntity(data []byte) ([]byte, error) {
	var ent map[string]any
	if err := json.Unmarshal(data, &ent); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	var enc string
	if n, ok := ent["Chunks"].(float64); ok {
		var sb strings.Builder
		for i := 0; i < int(n); i++ {
			part, ok := ent[chunkProperty(i)].(string)
			if !ok {
				return nil, fmt.Errorf("decode entity: missing %s", chunkProperty(i))
			}
			sb.WriteString(part)
		}
		enc = sb.String()
	} else {
		// entities written before values were chunked
		v, ok := ent["Value"].(string)
		if !ok {
			return nil, errors.New("decode entity: no value")
		}
		enc = v
	}
	value, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("decode entity value: %w", err)
	}
	return value, nil
}

func chunkProperty(i int) string {
	return "Value" + strconv.Itoa(i)
}
