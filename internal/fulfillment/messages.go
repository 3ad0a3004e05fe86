package fulfillment

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed messages/en_US.yaml
var defaultMessages []byte

type Messages struct {
	translations map[string]string
}

// LoadMessages returns the built-in catalog, overlaid with the YAML file at
// path when one is given. Keys missing from the file keep their defaults.
func LoadMessages(path string) (*Messages, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(defaultMessages, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse built-in messages: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read messages file %s: %w", path, err)
		}

		var overrides map[string]string
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("failed to parse messages file %s: %w", path, err)
		}
		for key, value := range overrides {
			translations[key] = value
		}
	}

	return &Messages{translations: translations}, nil
}

// DefaultMessages is the built-in catalog. It panics only if the embedded
// file is broken.
func DefaultMessages() *Messages {
	m, err := LoadMessages("")
	if err != nil {
		panic(err)
	}
	return m
}

// T looks up key and formats it with params. Unknown keys come back as is.
func (m *Messages) T(key string, params ...interface{}) string {
	translation, ok := m.translations[key]
	if !ok {
		return key
	}

	if len(params) > 0 {
		return fmt.Sprintf(translation, params...)
	}

	return translation
}

// ForReason returns the message for an attempt cut short by reason.
func (m *Messages) ForReason(reason Reason) string {
	return m.T("simulated_" + strings.ReplaceAll(string(reason), " ", "_"))
}
