package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tnyr/internal/flagx"
	"github.com/dmitrijs2005/tnyr/internal/timex"
)

// JsonConfig is the on-disk layout of the config file. Durations accept
// "5s" or integer nanoseconds. Absent or zero fields keep the current value.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	ReadTimeout      timex.Duration `json:"read_timeout"`
	WriteTimeout     timex.Duration `json:"write_timeout"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`

	StorageBackend string `json:"storage_backend"`
	DatabaseDSN    string `json:"database_dsn"`
	BadgerPath     string `json:"badger_path"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3Prefix       string `json:"s3_prefix"`

	Salts struct {
		Lookup     string `json:"salt1"`
		Encryption string `json:"salt2"`
	} `json:"salts"`

	Argon2 struct {
		TimeCost    uint32 `json:"time_cost"`
		MemoryCost  uint32 `json:"memory_cost"`
		Parallelism uint8  `json:"parallelism"`
		HashLength  uint32 `json:"hash_length"`
	} `json:"argon2"`

	IDGeneration struct {
		AllowedChars string `json:"allowed_chars"`
		Length       int    `json:"length"`
		MaxAttempts  int    `json:"max_attempts"`
	} `json:"id_generation"`

	DeletionToken string `json:"deletion_token"`
	DomainName    string `json:"domain_name"`
	LogLevel      string `json:"log_level"`
}

// parseJson overlays the file named by -c/-config in args, if any.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setNonZero(&config.ReadTimeout, c.ReadTimeout.Duration)
	setNonZero(&config.WriteTimeout, c.WriteTimeout.Duration)
	setNonZero(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)

	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BadgerPath, c.BadgerPath)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3Prefix, c.S3Prefix)

	setString(&config.LookupSecret, c.Salts.Lookup)
	setString(&config.EncryptionSecret, c.Salts.Encryption)

	setNonZero(&config.Argon2TimeCost, c.Argon2.TimeCost)
	setNonZero(&config.Argon2MemoryCost, c.Argon2.MemoryCost)
	setNonZero(&config.Argon2Parallelism, c.Argon2.Parallelism)
	setNonZero(&config.Argon2HashLength, c.Argon2.HashLength)

	setString(&config.IDAlphabet, c.IDGeneration.AllowedChars)
	setNonZero(&config.IDLength, c.IDGeneration.Length)
	setNonZero(&config.MaxAttempts, c.IDGeneration.MaxAttempts)

	setString(&config.DeletionToken, c.DeletionToken)
	setString(&config.DomainName, c.DomainName)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNonZero[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
