package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

func loadEnv() error {
	// Try to load from .env file
	if err := godotenv.Load(); err != nil {
		// If .env doesn't exist, try to load from user's home directory
		home, err := os.UserHomeDir()
		if err == nil {
			godotenv.Load(filepath.Join(home, ".tern.env"))
		}
	}
	return nil
}
