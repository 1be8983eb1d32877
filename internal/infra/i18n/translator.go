package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Bucket maps a store locale to one of the three supported bundles. Russian
// stores get "ru", British and American English get "en", everything else
// falls back to Estonian. Fixed policy, not configurable.
func Bucket(locale string) string {
	switch locale {
	case "ru_RU":
		return "ru"
	case "en_GB", "en_US":
		return "en"
	default:
		return "et"
	}
}

// Translator resolves shopper- and merchant-facing strings for one bucket.
type Translator struct {
	translations map[string]string
}

// NewTranslator loads the bundle for a locale bucket from fsys.
func NewTranslator(fsys fs.FS, bucket string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", bucket))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}

	return &Translator{translations: translations}, nil
}

// T returns the string for key, formatted with args. Unknown keys come back
// as the key itself so a missing entry is visible instead of silent.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
