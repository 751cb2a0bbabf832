package utils

import (
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/joho/godotenv"
)

// ReadEnvFile parses the dotenv file at dir/filename. A missing or malformed
// file yields an empty map.
func ReadEnvFile(fsys billy.Filesystem, dir, filename string) map[string]string {
	result := make(map[string]string)
	if filename == "" {
		return result
	}

	f, err := fsys.Open(filepath.Join(dir, filename))
	if err != nil {
		return result
	}
	defer f.Close()

	parsed, err := godotenv.Parse(f)
	if err != nil {
		return result
	}
	for k, v := range parsed {
		result[k] = v
	}
	return result
}

func EnvExists(env map[string]string, key string) bool {
	_, exists := env[key]
	return exists
}
