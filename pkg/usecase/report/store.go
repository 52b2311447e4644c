package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/adapter"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/rmts-health/rmts/pkg/utils/sanitize"
)

const (
	contentTypePDF = "application/pdf"
	// DownloadTokenMetadataKey is the object metadata key holding the capability token
	DownloadTokenMetadataKey = "firebaseStorageDownloadTokens"
)

type uploadedObject struct {
	URL string
	Key string
}

// objectKey is namespaced by patient. The nonce keeps generations within the same
// millisecond from overwriting each other's object and token.
func objectKey(patientID string, unixMillis int64, nonce string) string {
	return fmt.Sprintf("reports/%s/%s_%d_%s.pdf", patientID, patientID, unixMillis, nonce)
}

const objectKeyNonceLen = 8

// encodeComponent escapes s the way a URI component is escaped, spaces as %20
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func downloadURL(base, bucket, key, token string) string {
	return fmt.Sprintf("%s/%s/o/%s?alt=media&token=%s",
		strings.TrimRight(base, "/"), bucket, encodeComponent(key), url.QueryEscape(token))
}

// objectKeyFromURL recovers the object key of a download URL. Records written before
// the key was persisted only carry the URL.
func objectKeyFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	_, encoded, found := strings.Cut(u.EscapedPath(), "/o/")
	if !found || encoded == "" {
		return "", false
	}
	key, err := url.PathUnescape(encoded)
	if err != nil {
		return "", false
	}
	return key, true
}

// upload writes the document and returns its token-bearing URL. The object is only
// complete once Close succeeds.
func (u *UseCase) upload(ctx context.Context, patientID string, data []byte) (*uploadedObject, error) {
	token := uuid.NewString()
	key := objectKey(patientID, u.now().UnixMilli(), strings.ReplaceAll(token, "-", "")[:objectKeyNonceLen])

	w, err := u.storage.Put(ctx, key, adapter.ObjectAttrs{
		ContentType: contentTypePDF,
		Metadata:    map[string]string{DownloadTokenMetadataKey: token},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object writer", goerr.V("key", key))
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, goerr.Wrap(err, "failed to write report object", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to complete report upload", goerr.V("key", key))
	}

	return &uploadedObject{
		URL: downloadURL(u.storageBaseURL, u.storage.Bucket(), key, token),
		Key: key,
	}, nil
}

// saveMetadata persists the report record. Absent values are dropped at every depth
// before the write; id and createdAt are assigned by the store.
func (u *UseCase) saveMetadata(ctx context.Context, patientID, appointmentID string, obj *uploadedObject, draft *model.ReportDraft) (*model.StoredReport, error) {
	var appointment any
	if appointmentID != "" {
		appointment = appointmentID
	}

	record := sanitize.Map(map[string]any{
		"reportUrl":     obj.URL,
		"objectKey":     obj.Key,
		"appointmentId": appointment,
		"language":      model.ReportLanguage,
		"formatVersion": model.ReportFormatVersion,
		"generatedVia":  string(draft.GeneratedVia),
		"summary":       draft.Summary.Map(),
	})

	report, err := u.repo.PutReport(ctx, patientID, record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save report metadata", goerr.V("object_key", obj.Key))
	}
	return report, nil
}
