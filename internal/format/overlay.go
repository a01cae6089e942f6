package format

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// overlayFile is the on-disk shape of an operator-supplied formats.yaml,
// letting a deployment add in-house export-tool signatures without a rebuild.
type overlayFile struct {
	Signatures []overlaySignature `yaml:"signatures"`
}

type overlaySignature struct {
	FormatID string `yaml:"formatId"`
	Pattern  string `yaml:"pattern"`
}

// LoadOverlay reads path (if it exists) and registers each additional
// signature against its named format id.
func LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("format: reading overlay %s: %w", path, err)
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("format: parsing overlay %s: %w", path, err)
	}

	for _, sig := range overlay.Signatures {
		re, err := regexp.Compile(sig.Pattern)
		if err != nil {
			return fmt.Errorf("format: overlay signature for %s: %w", sig.FormatID, err)
		}
		if ok := RegisterSignature(sig.FormatID, re); !ok {
			return fmt.Errorf("format: overlay references unknown format id %q", sig.FormatID)
		}
	}
	return nil
}
