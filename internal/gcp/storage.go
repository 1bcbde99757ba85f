package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// UploadImageAtomically writes image bytes to a GCS object only if it doesn't
// already exist, and returns the object's public URL. Object names are caller
// supplied and expected to be unique (UUID based), so an already-exists
// conflict means a duplicate upload and is not a failure.
func UploadImageAtomically(ctx context.Context, bucket *storage.BucketHandle, bucketName, objectName, contentType string, data []byte) (string, error) {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			slog.Info("Skipping upload, object already exists.", "object", objectName)
			return publicURL(bucketName, objectName), nil
		}
		return "", fmt.Errorf("failed to write image to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS write for %s: %w", objectName, err)
	}
	return publicURL(bucketName, objectName), nil
}

func publicURL(bucketName, objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName)
}
