// Package config handles configuration loading for paramspec-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "127.0.0.1:8080"   # API, docs, and MCP endpoint
//
// Storage:
//
//	storage:
//	  path: "data/parameter_specs.csv"
//
// Docs endpoints:
//
//	docs:
//	  enabled: true
//
// Tailscale (optional; replaces the TCP listener):
//
//	tailscale:
//	  enabled: false
//	  hostname: "paramspec"
//	  auth_key: "${TS_AUTHKEY}"
//	  https: true
//	  funnel: false
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/paramspec/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
