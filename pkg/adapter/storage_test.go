package adapter_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/rmts-health/rmts/pkg/adapter"
)

func TestStoragePutGet(t *testing.T) {
	bucket := os.Getenv("TEST_STORAGE_BUCKET")
	if bucket == "" {
		t.Skip("TEST_STORAGE_BUCKET is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewStorage(ctx, bucket)
	gt.NoError(t, err)
	t.Cleanup(func() { gt.NoError(t, client.Close()) })
	gt.Equal(t, client.Bucket(), bucket)

	key := "test/" + time.Now().Format("20060102150405") + ".txt"
	w, err := client.Put(ctx, key, adapter.ObjectAttrs{
		ContentType: "text/plain",
		Metadata:    map[string]string{"firebaseStorageDownloadTokens": "test-token"},
	})
	gt.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	gt.NoError(t, err)
	gt.NoError(t, w.Close())

	r, err := client.Get(ctx, key)
	gt.NoError(t, err)
	defer r.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	gt.NoError(t, err)
	gt.Equal(t, buf.String(), "hello")
}
