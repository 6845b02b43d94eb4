package utils

import (
	"os"
	"strings"
)

const (
	StorageProviderGCS    = "gcs"
	StorageProviderMemory = "memory"
)

// GetStorageProvider selects where staged previews live. Development
// setups without a bucket use memory.
func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		if strings.TrimSpace(os.Getenv("GCS_BUCKET")) == "" {
			return StorageProviderMemory
		}
		return StorageProviderGCS
	}
	return provider
}
