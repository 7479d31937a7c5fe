package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/subosito/gotenv"
)

// DefaultEnvFile is read at startup when ENV_FILE is unset.
const DefaultEnvFile = ".env"

// EnvFilePath returns the dotenv file named by ENV_FILE, or DefaultEnvFile.
func EnvFilePath() string {
	if path, ok := os.LookupEnv("ENV_FILE"); ok && path != "" {
		return path
	}
	return DefaultEnvFile
}

// LoadEnvFile seeds the process environment from a dotenv file.
// Variables already present in the environment are left untouched.
// It reports false without error when the file does not exist.
func LoadEnvFile(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("config: stat env file: %w", err)
	}
	if err := gotenv.Load(path); err != nil {
		return false, fmt.Errorf("config: load env file %s: %w", path, err)
	}
	return true, nil
}
