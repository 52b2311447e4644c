package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// ObjectAttrs are written together with an object
type ObjectAttrs struct {
	ContentType string
	// Metadata is custom object metadata, e.g. download tokens
	Metadata map[string]string
}

// Storage is the interface for report document storage
type Storage interface {
	// Put returns a writer for the object. The upload completes, or fails, when Close
	// returns.
	Put(ctx context.Context, key string, attrs ObjectAttrs) (io.WriteCloser, error)
	// Get opens the object for reading
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Bucket returns the bucket name used for public URLs
	Bucket() string
}

var _ Storage = (*CloudStorage)(nil)

// CloudStorage implements Storage interface using Cloud Storage
type CloudStorage struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client. STORAGE_EMULATOR_HOST is honoured by
// the underlying client.
func NewStorage(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorage, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &CloudStorage{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *CloudStorage) Put(ctx context.Context, key string, attrs ObjectAttrs) (io.WriteCloser, error) {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(key)
	writer := obj.NewWriter(ctx)
	writer.ContentType = attrs.ContentType
	writer.Metadata = attrs.Metadata
	return writer, nil
}

func (s *CloudStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.Value("key", key))
	}

	return reader, nil
}

func (s *CloudStorage) Bucket() string {
	return s.bucketName
}

// Close releases the underlying client
func (s *CloudStorage) Close() error {
	return s.client.Close()
}
