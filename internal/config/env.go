package config

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/layerview/internal/logger"
)

// Environment overrides read once at load time.
const (
	EnvMax3DElements = "CURA_MAX_LAYER_VIEW_3D_ELEMENTS"
	EnvResolution    = "CURA_LAYER_VIEW_RESOLUTION"
)

// applyEnv applies integer overrides from the environment. Values that do not
// parse are ignored and the existing setting is kept.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if n, ok := envInt(lookup, EnvMax3DElements); ok {
		cfg.LayerView.Max3DElements = &n
	}
	if n, ok := envInt(lookup, EnvResolution); ok {
		cfg.LayerView.Resolution = &n
	}
}

func envInt(lookup func(string) (string, bool), key string) (int, bool) {
	raw, ok := lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logger.Debug("ignoring malformed environment override",
			zap.String("key", key),
			zap.String("value", raw),
		)
		return 0, false
	}
	return n, true
}
