package config

// Environment variables. The two secret names match the output of
// `tnyrctl secrets --env`.
const (
	EnvLookupSecret     = "TNYR_SALT1_HEX"
	EnvEncryptionSecret = "TNYR_SALT2_HEX"
	EnvDeletionToken    = "TNYR_DELETION_TOKEN"
	EnvDatabaseDSN      = "TNYR_DATABASE_DSN"
)

// parseEnv overrides fields whose variable is set, even to "".
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLookupSecret); ok {
		config.LookupSecret = v
	}
	if v, ok := lookup(EnvEncryptionSecret); ok {
		config.EncryptionSecret = v
	}
	if v, ok := lookup(EnvDeletionToken); ok {
		config.DeletionToken = v
	}
	if v, ok := lookup(EnvDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
}
