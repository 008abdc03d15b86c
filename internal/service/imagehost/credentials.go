package imagehost

import (
	"fmt"
	"strings"

	hostmodel "github.com/Paveld-cloud/imgbb-bot/internal/model/imagehost"
)

// resolveKey returns the normalized API key, with a clear error when it is
// missing.
func resolveKey(cfg *hostmodel.Config) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("imgbb configuration is not initialized")
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return "", fmt.Errorf("imgbb configuration is missing the API key")
	}

	return key, nil
}
