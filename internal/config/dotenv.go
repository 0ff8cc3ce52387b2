package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// Preload copies variables from the dotenv file at path into the process
// environment. Variables that are already set win. A missing file is not an
// error.
func Preload(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}
