package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/adammck/ixstore/pkg/api"
	"github.com/adammck/ixstore/pkg/impl/kv/bolt"
	"github.com/adammck/ixstore/pkg/impl/kv/memory"
	"github.com/adammck/ixstore/pkg/impl/kv/mongo"
	"github.com/adammck/ixstore/pkg/impl/kv/s3"
	"github.com/adammck/ixstore/pkg/impl/kv/sqlite"
	"github.com/adammck/ixstore/pkg/indexstore"
	sharedmongo "github.com/adammck/ixstore/pkg/shared/mongo"
)

// structJSON is the CLI's wire format for index structs.
type structJSON struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Summary string          `json:"summary,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: ixstore <put|get|delete|list> [id]")
		os.Exit(1)
	}

	cmd := os.Args[1]

	store, cleanup, err := newStore(ctx)
	if err != nil {
		log.Fatalf("newStore: %v", err)
	}
	defer cleanup()

	switch cmd {
	case "put":
		err = cmdPut(ctx, store, os.Stdin)
	case "get":
		err = cmdGet(ctx, store, arg(2), os.Stdout)
	case "delete":
		err = store.DeleteIndexStruct(ctx, arg(2))
	case "list":
		err = cmdList(ctx, store, os.Stdout)
	default:
		log.Fatalf("Unknown command: %s", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func arg(n int) string {
	if len(os.Args) <= n {
		log.Fatalf("Required: id")
	}
	return os.Args[n]
}

// newStore builds an index store over the backend selected by IXSTORE_BACKEND:
// memory (default), bolt, sqlite, mongo, or s3. bolt and sqlite need
// IXSTORE_PATH; mongo needs MONGO_URL; s3 needs S3_BUCKET and ambient AWS
// config.
func newStore(ctx context.Context) (api.IndexStore, func(), error) {
	backend := os.Getenv("IXSTORE_BACKEND")
	noop := func() {}

	switch backend {
	case "", "memory":
		return indexstore.New(memory.New()), noop, nil

	case "bolt":
		kv, err := bolt.Open(requireEnv("IXSTORE_PATH"))
		if err != nil {
			return nil, nil, err
		}
		return indexstore.New(kv), func() { kv.Close() }, nil

	case "sqlite":
		kv, err := sqlite.Open(requireEnv("IXSTORE_PATH"))
		if err != nil {
			return nil, nil, err
		}
		return indexstore.New(kv), func() { kv.Close() }, nil

	case "mongo":
		client := sharedmongo.NewClient(requireEnv("MONGO_URL"))
		db, err := client.GetDB(ctx)
		if err != nil {
			return nil, nil, err
		}
		return indexstore.New(mongo.New(db)), func() { client.Close(ctx) }, nil

	case "s3":
		kv := s3.New(requireEnv("S3_BUCKET"))
		if err := kv.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return indexstore.New(kv), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("Required: %s", key)
	}
	return val
}

func cmdPut(ctx context.Context, store api.IndexStore, r io.Reader) error {
	input, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("ReadAll: %w", err)
	}

	var sj structJSON
	if err := json.Unmarshal(input, &sj); err != nil {
		return fmt.Errorf("Unmarshal: %w", err)
	}

	return store.AddIndexStruct(ctx, &api.IndexStruct{
		ID:      sj.ID,
		Type:    sj.Type,
		Summary: sj.Summary,
		Data:    sj.Data,
	})
}

func cmdGet(ctx context.Context, store api.IndexStore, id string, w io.Writer) error {
	is, err := store.GetIndexStruct(ctx, id)
	if err != nil {
		return err
	}

	return printStruct(w, is)
}

func cmdList(ctx context.Context, store api.IndexStore, w io.Writer) error {
	it, err := store.IndexStructs(ctx)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next(ctx) {
		if err := printStruct(w, it.Struct()); err != nil {
			return err
		}
	}

	return it.Err()
}

func printStruct(w io.Writer, is *api.IndexStruct) error {
	out, err := json.Marshal(structJSON{
		ID:      is.ID,
		Type:    is.Type,
		Summary: is.Summary,
		Data:    is.Data,
	})
	if err != nil {
		return fmt.Errorf("Marshal: %w", err)
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}
