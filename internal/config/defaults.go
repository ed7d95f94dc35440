package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# relnotes configuration
# See 'relnotes config keys' for all options

# Sections, in rendering order
types:
  - type: feat
    title: "🚀 Features"
  - type: fix
    title: "🐞 Bug Fixes"
  - type: perf
    title: "🏎 Performance"
  - type: chore
    title: "🧹 Chores"

titles:
  breaking_changes: "🚨 Breaking Changes"
  contributors: "❤️ Contributors"

scope_map: {}                         # Scope aliases, e.g. {ui: frontend}

# Rendering
contributors: true                    # Resolve and show authors
contributors_section: false           # Append a contributors section
capitalize: true                      # Capitalize commit descriptions
group: true                           # Nest scopes with more than one commit
emoji: true                           # Keep emoji in section titles
duplicate_breaking: true              # List breaking commits under their type too

# Hosting
provider: github                      # github | gitlab
base_url: ""                          # Defaults to github.com or gitlab.com
base_url_api: ""                      # Defaults to api.github.com or gitlab.com/api/v4
release_repo: ""                      # Publish to another repository

# Release
draft: false
# prerelease: false                   # Inferred from the tag when unset
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// types: ordered section table. Unlisted types are left out of the changelog.
		"types": []map[string]interface{}{
			{"type": "feat", "title": "🚀 Features"},
			{"type": "fix", "title": "🐞 Bug Fixes"},
			{"type": "perf", "title": "🏎 Performance"},
			{"type": "chore", "title": "🧹 Chores"},
		},
		"titles": map[string]interface{}{
			"breaking_changes": "🚨 Breaking Changes",
			"contributors":     "❤️ Contributors",
		},
		"scope_map":            map[string]interface{}{},
		"contributors":         true,
		"contributors_section": false,
		"capitalize":           true,
		"group":                true,
		"emoji":                true,
		"duplicate_breaking":   true,
		"provider":             ProviderGitHub,
		"draft":                false,
		"dry":                  false,
	}
}

// Provider names accepted by the provider key.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
)
