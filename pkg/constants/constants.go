// Package constants holds process-wide names shared by cmd and config.
package constants

const (
	AppName = "sapan"

	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix prefixes every environment override, e.g. SAPAN_DATABASE_HOST.
	EnvPrefix = "SAPAN"

	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)
