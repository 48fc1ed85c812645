// Package config loads shirtform settings.
//
// Settings come from three layers, later ones winning:
//
//  1. shirtform.json in the working directory (optional)
//  2. a .env file next to it (optional), read with godotenv
//  3. SHIRTFORM_* variables in the process environment
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "maxMessageBytes": 4096,
//	    "maxSessions": 0
//	  },
//	  "log": {"level": "info", "format": "text"},
//	  "validation": {"mode": "sync"},
//	  "schema": "./schema.yaml",
//	  "catalog": "./catalog.yaml",
//	  "metrics": {"enabled": true, "path": "/metrics"},
//	  "tracing": {"enabled": false, "name": "shirtform"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    errors.PrintError(os.Stderr, err)
//	    os.Exit(1)
//	}
//	logger := cfg.Log.Logger(os.Stderr)
package config
