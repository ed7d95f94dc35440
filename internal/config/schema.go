package config

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeString
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a scalar configuration key that can be overridden
// from the command line with --set key=value.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "titles.contributors")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
}

// KnownKeys is the registry of scalar configuration keys.
// List-valued keys (types, scope_map) are only settable from config files.
var KnownKeys = map[string]ConfigKeySchema{
	"titles.breaking_changes": {
		Path:        "titles.breaking_changes",
		Type:        TypeString,
		Description: "Title of the breaking changes section",
	},
	"titles.contributors": {
		Path:        "titles.contributors",
		Type:        TypeString,
		Description: "Title of the contributors section",
	},
	"contributors": {
		Path:        "contributors",
		Type:        TypeBool,
		Description: "Resolve commit authors against the hosting provider",
	},
	"contributors_section": {
		Path:        "contributors_section",
		Type:        TypeBool,
		Description: "Append a section listing every contributor",
	},
	"capitalize": {
		Path:        "capitalize",
		Type:        TypeBool,
		Description: "Capitalize the first letter of commit descriptions",
	},
	"group": {
		Path:        "group",
		Type:        TypeBool,
		Description: "Nest scopes with more than one commit under a scope heading",
	},
	"emoji": {
		Path:        "emoji",
		Type:        TypeBool,
		Description: "Keep emoji in section titles",
	},
	"duplicate_breaking": {
		Path:        "duplicate_breaking",
		Type:        TypeBool,
		Description: "List breaking commits under their type section too",
	},
	"provider": {
		Path:          "provider",
		Type:          TypeEnum,
		AllowedValues: []string{ProviderGitHub, ProviderGitLab},
		Description:   "Hosting provider used for links, authors and releases",
	},
	"token": {
		Path:        "token",
		Type:        TypeString,
		Description: "API token (falls back to GITHUB_TOKEN or GITLAB_TOKEN)",
	},
	"base_url": {
		Path:        "base_url",
		Type:        TypeString,
		Description: "Web host of the repository (e.g. github.com)",
	},
	"base_url_api": {
		Path:        "base_url_api",
		Type:        TypeString,
		Description: "API host (e.g. api.github.com)",
	},
	"repo": {
		Path:        "repo",
		Type:        TypeString,
		Description: "Repository as owner/name (read from the origin remote when empty)",
	},
	"release_repo": {
		Path:        "release_repo",
		Type:        TypeString,
		Description: "Repository the release is published to (defaults to repo)",
	},
	"from": {
		Path:        "from",
		Type:        TypeString,
		Description: "Start of the commit range (defaults to the previous tag)",
	},
	"to": {
		Path:        "to",
		Type:        TypeString,
		Description: "End of the commit range and release tag (defaults to the current branch)",
	},
	"name": {
		Path:        "name",
		Type:        TypeString,
		Description: "Release title (defaults to the tag)",
	},
	"draft": {
		Path:        "draft",
		Type:        TypeBool,
		Description: "Publish the release as a draft",
	},
	"prerelease": {
		Path:        "prerelease",
		Type:        TypeBool,
		Description: "Mark the release as a prerelease (inferred from the tag when unset)",
	},
	"output": {
		Path:        "output",
		Type:        TypeString,
		Description: "Also write the changelog to this file",
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// SortedKeys returns the registry keys in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for key := range KnownKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ParsedValue represents a configuration value after validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// ParseAssignment splits "key=value" and validates the value against the key's schema.
func ParseAssignment(assignment string) (string, ParsedValue, error) {
	key, value, ok := strings.Cut(assignment, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", ParsedValue{}, fmt.Errorf("invalid assignment %q (expected key=value)", assignment)
	}
	key = strings.TrimSpace(key)
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return "", ParsedValue{}, fmt.Errorf("%s: %w", key, err)
	}
	return key, parsed, nil
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
