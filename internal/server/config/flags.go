package config

import (
	"flag"

	"github.com/dmitrijs2005/tnyr/internal/flagx"
)

// parseFlags applies the short command-line flags found in args:
//
//	-a string   HTTP bind address (":5000")
//	-b string   storage backend: postgres, sqlite, badger, s3, memory
//	-d string   database DSN (postgres, sqlite)
//	-p string   badger directory
//	-s string   S3 bucket
//	-e string   S3 base endpoint
//	-l string   lookup secret, 16 bytes hex
//	-k string   encryption secret, 16 bytes hex
//	-n int      identifier length
//	-m int      allocation attempts per shorten
//	-t string   deletion token (empty disables takedown)
//	-v string   log level
//
// Other arguments, including -c, are ignored.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-b", "-d", "-p", "-s", "-e", "-l", "-k", "-n", "-m", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BadgerPath, "p", config.BadgerPath, "badger directory")
	fs.StringVar(&config.S3Bucket, "s", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LookupSecret, "l", config.LookupSecret, "lookup secret (hex)")
	fs.StringVar(&config.EncryptionSecret, "k", config.EncryptionSecret, "encryption secret (hex)")
	fs.IntVar(&config.IDLength, "n", config.IDLength, "identifier length")
	fs.IntVar(&config.MaxAttempts, "m", config.MaxAttempts, "allocation attempts")
	fs.StringVar(&config.DeletionToken, "t", config.DeletionToken, "deletion token")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
