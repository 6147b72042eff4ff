package authorize

import "github.com/Alijeyrad/sapan_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is the path to the Casbin model configuration file
	CasbinModelPath string

	// EnableAudit wraps the enforcer with decision logging
	EnableAudit bool

	// SuperadminBypass allows superadmins to bypass all authorization checks
	SuperadminBypass bool

	// PolicySyncEnabled attaches the postgres LISTEN/NOTIFY watcher
	PolicySyncEnabled bool
}

func DefaultConfig() Config {
	return Config{
		CasbinModelPath:   "casbin_model.conf",
		EnableAudit:       true,
		SuperadminBypass:  true,
		PolicySyncEnabled: false,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	d := DefaultConfig()
	if c.CasbinModelPath != "" {
		d.CasbinModelPath = c.CasbinModelPath
	}
	d.EnableAudit = c.EnableAudit
	d.SuperadminBypass = c.SuperadminBypass
	d.PolicySyncEnabled = c.PolicySyncEnabled
	return d
}
