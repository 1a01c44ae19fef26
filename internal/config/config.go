// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the relational (PostgreSQL) connection string used by
	// the product sink.
	DatabaseDSN string

	// MongoURI holds the document-store connection string used for user and
	// chat message persistence.
	MongoURI string

	// Mode selects the run mode: "FORK" for a single process or "CLUSTER"
	// when an external supervisor replicates the process per CPU. The server
	// itself does not fork; the value is logged so operators can tell
	// replicas apart.
	Mode string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "relational db address")
	flag.StringVar(&options.MongoURI, "mongo", "mongodb://localhost:27017/livemarket", "document store address")
	flag.StringVar(&options.Mode, "m", "FORK", "run mode: FORK or CLUSTER")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}

	if databaseDSN := os.Getenv("DATABASE_DSN"); databaseDSN != "" {
		options.DatabaseDSN = databaseDSN
	}

	if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
		options.MongoURI = mongoURI
	}

	if mode := os.Getenv("MODE"); mode != "" {
		options.Mode = mode
	}

	return options
}
