// Package config loads service configuration from a YAML file, an optional
// .env file, and the process environment.
//
// Environment variables are bound under every nested-key spelling they
// could mean, so RUNPOD_AUTH_TOKEN populates both runpod.auth_token and
// runpod_auth_token. Structs embed ServiceConfig and implement
// ApplyDefaults/Validate.
package config
