// Package config holds the server configuration: defaults, then an
// optional JSON file, then environment variables, then command-line
// flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/logging"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Config holds runtime settings for the tnyr server.
//
// LookupSecret and EncryptionSecret are 16-byte values in hex and have no
// defaults: the server refuses to start without them. An empty
// DeletionToken disables takedown.
type Config struct {
	EndpointAddrHTTP string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration

	StorageBackend string
	DatabaseDSN    string
	BadgerPath     string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3Prefix       string

	LookupSecret      string
	EncryptionSecret  string
	Argon2TimeCost    uint32
	Argon2MemoryCost  uint32
	Argon2Parallelism uint8
	Argon2HashLength  uint32

	IDAlphabet  string
	IDLength    int
	MaxAttempts int

	DeletionToken string
	DomainName    string
	LogLevel      string
}

// LoadDefaults populates Config with development defaults. Secrets are
// left empty on purpose.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":5000"
	c.ReadTimeout = 5 * time.Second
	c.WriteTimeout = 10 * time.Second
	c.ShutdownTimeout = 10 * time.Second

	c.StorageBackend = BackendSQLite
	c.DatabaseDSN = "file:tnyr.db?_pragma=busy_timeout(5000)"
	c.BadgerPath = "data/badger"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "tnyr"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3Prefix = ""

	c.Argon2TimeCost = cryptox.DefaultArgon2Params.TimeCost
	c.Argon2MemoryCost = cryptox.DefaultArgon2Params.MemoryCost
	c.Argon2Parallelism = cryptox.DefaultArgon2Params.Parallelism
	c.Argon2HashLength = cryptox.DefaultArgon2Params.KeyLength

	c.IDAlphabet = cryptox.DefaultAlphabet
	c.IDLength = cryptox.DefaultIDLength
	c.MaxAttempts = 100

	c.DomainName = "tnyr.me"
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, the JSON file named by -c,
// the environment and finally the command line. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseEnv(cfg, os.LookupEnv)
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// Argon2Params returns the configured server KDF parameters.
func (c *Config) Argon2Params() cryptox.Argon2Params {
	return cryptox.Argon2Params{
		TimeCost:    c.Argon2TimeCost,
		MemoryCost:  c.Argon2MemoryCost,
		Parallelism: c.Argon2Parallelism,
		KeyLength:   c.Argon2HashLength,
	}
}

// Validate reports every problem it finds, joined.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendPostgres, BackendSQLite:
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("database dsn is required for %s", c.StorageBackend))
		}
	case BackendBadger:
		if c.BadgerPath == "" {
			errs = append(errs, errors.New("badger path is required"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	if _, err := c.Keys(); err != nil {
		errs = append(errs, err)
	}
	if err := cryptox.ValidateIDConfig(c.IDAlphabet, c.IDLength); err != nil {
		errs = append(errs, err)
	}
	if c.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.EndpointAddrHTTP) == "" {
		errs = append(errs, errors.New("http endpoint address is required"))
	}

	return errors.Join(errs...)
}

// Keys parses both secrets and builds the server key set.
func (c *Config) Keys() (*cryptox.ServerKeys, error) {
	lookup, err := cryptox.ParseSecret(c.LookupSecret)
	if err != nil {
		return nil, fmt.Errorf("lookup secret: %w", err)
	}
	encryption, err := cryptox.ParseSecret(c.EncryptionSecret)
	if err != nil {
		return nil, fmt.Errorf("encryption secret: %w", err)
	}
	return cryptox.NewServerKeys(lookup, encryption, c.Argon2Params())
}
