// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to the settings of both services (RHS and MOS) while keeping
// configuration details separate from business logic.
package config
