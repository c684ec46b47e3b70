package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// mergeSecrets overlays one-file-per-key secrets on top of the config file
// layer. The environment still wins for the same key; a missing secrets
// directory is not an error.
func mergeSecrets(v *viper.Viper, dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	values := make(map[string]any)
	for _, key := range secretKeys {
		path := filepath.Join(dir, key)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read secret %s: %w", path, err)
		}
		values[key] = strings.TrimSpace(string(data))
	}

	if len(values) == 0 {
		return nil
	}
	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("merge secrets: %w", err)
	}
	return nil
}
