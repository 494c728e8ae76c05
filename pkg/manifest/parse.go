package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// SupportedVersions is the range of manifest versions this package understands.
// An empty version is accepted.
const SupportedVersions = ">= 0.1.0, < 2.0.0"

// Parse decodes a JSON or YAML manifest document. It does not validate the schema.
func Parse(data []byte) (*domain.Manifest, error) {
	raw, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is %T, want an object", ErrInvalidManifest, raw)
	}

	var m domain.Manifest
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &m,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return &m, nil
}

// Load reads, validates and decodes the manifest at path, then checks its version.
func Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Decode(data)
}

// Decode validates and decodes a manifest document, then checks its version.
func Decode(data []byte) (*domain.Manifest, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := CheckVersion(m.Version); err != nil {
		return nil, err
	}
	return m, nil
}

// CheckVersion reports whether version satisfies SupportedVersions.
// A leading "v" is tolerated.
func CheckVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s not in %s", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return nil
}
