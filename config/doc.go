// Package config loads and validates process configuration from
// defaults, optional YAML files, PHOTOWALL_* environment variables, and
// CLI flags (highest precedence last). The object-store settings have no
// defaults on purpose: a missing bucket or credential fails startup
// loudly instead of silently pointing at some hardcoded bucket.
package config
