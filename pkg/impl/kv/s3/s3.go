// Package s3 provides a KVStore backed by an S3 bucket, with one object per
// key laid out as <collection>/<key>. Use it when the index must be durable
// and shared without running a database.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/adammck/ixstore/pkg/api"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds parallel GetObject calls during GetAll.
const maxConcurrentFetches = 8

type Store struct {
	bucket string
	s3     *s3.Client
}

var _ api.KVStore = (*Store)(nil) // Type check: implements interface

func New(bucket string) *Store {
	return &Store{
		bucket: bucket,
	}
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	s3c, err := s.getS3(ctx)
	if err != nil {
		return nil, false, err
	}

	output, err := s3c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(objectKey(collection, key)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("GetObject: %w", err)
	}
	defer output.Body.Close()

	val, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, false, fmt.Errorf("ReadAll: %w", err)
	}

	return val, true, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, value []byte) error {
	s3c, err := s.getS3(ctx)
	if err != nil {
		return err
	}

	_, err = s3c.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(objectKey(collection, key)),
		Body:   bytes.NewReader(value),
	})
	if err != nil {
		return fmt.Errorf("PutObject: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) (bool, error) {
	s3c, err := s.getS3(ctx)
	if err != nil {
		return false, err
	}

	k := aws.String(objectKey(collection, key))

	// DeleteObject succeeds whether or not the object exists, so check
	// first. The head/delete race is fine; concurrent writers already get
	// last-write-wins.
	_, err = s3c.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    k,
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("HeadObject: %w", err)
	}

	_, err = s3c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    k,
	})
	if err != nil {
		return false, fmt.Errorf("DeleteObject: %w", err)
	}

	return true, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	s3c, err := s.getS3(ctx)
	if err != nil {
		return nil, err
	}

	prefix := collection + "/"

	var keys []string
	pager := s3.NewListObjectsV2Paginator(s3c, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &prefix,
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ListObjectsV2: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	out := make(map[string][]byte, len(keys))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for _, objKey := range keys {
		g.Go(func() error {
			output, err := s3c.GetObject(ctx, &s3.GetObjectInput{
				Bucket: &s.bucket,
				Key:    &objKey,
			})
			if err != nil {
				return fmt.Errorf("GetObject: %w", err)
			}
			defer output.Body.Close()

			val, err := io.ReadAll(output.Body)
			if err != nil {
				return fmt.Errorf("ReadAll: %w", err)
			}

			mu.Lock()
			out[strings.TrimPrefix(objKey, prefix)] = val
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.getS3(ctx)
	return err
}

func (s *Store) getS3(ctx context.Context) (*s3.Client, error) {
	if s.s3 != nil {
		return s.s3, nil
	}

	c, err := connectToS3(ctx)
	if err != nil {
		return nil, err
	}

	s.s3 = c
	return c, nil
}

func connectToS3(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

func objectKey(collection, key string) string {
	return collection + "/" + key
}
