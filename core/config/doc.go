// Package config provides configuration management for the cloze manager.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file (godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP bridge settings (port, API key)
//   - Database: collection database connection (sqlite file or mysql)
//   - Storage: S3/MinIO credentials for checkpoint snapshots
//   - Log: logging level and format
//
// Defaults come from `default` struct tags and are resolved via reflection,
// so every key is registered with Viper before AutomaticEnv kicks in.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
