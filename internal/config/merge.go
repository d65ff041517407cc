package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names.
const (
	keyAPI     = "api"
	keyCache   = "cache"
	keyLogging = "logging"
	keyServer  = "server"
	keyOutput  = "output"
)

// knownTopLevelKeys lists the YAML keys that correspond to Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyAPI:     true,
	keyCache:   true,
	keyLogging: true,
	keyServer:  true,
	keyOutput:  true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level sections onto
// target. Fields set in a section overwrite the target's; fields the section
// leaves out keep their current value. Sections absent from the file are
// left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]interface{}
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		// Re-marshal the single section so it can be decoded onto the
		// strongly-typed target field.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes raw YAML bytes onto the matching field of target.
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keyAPI:
		return yaml.Unmarshal(data, &target.API)
	case keyCache:
		return yaml.Unmarshal(data, &target.Cache)
	case keyLogging:
		return yaml.Unmarshal(data, &target.Logging)
	case keyServer:
		return yaml.Unmarshal(data, &target.Server)
	case keyOutput:
		return yaml.Unmarshal(data, &target.Output)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
