package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// environmentSnapshot captures the process environment once, optionally
// merging in a dotenv file. Process variables win over file entries, the
// same precedence a real run would see. The snapshot is immutable for the
// rest of the invocation so hashing stays deterministic even if the process
// environment changes mid-plan.
func environmentSnapshot(envFile string) (map[string]string, error) {
	env := map[string]string{}
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file '%s': %w", envFile, err)
		}
		for name, value := range fileVars {
			env[name] = value
		}
	}
	for _, kv := range os.Environ() {
		if i := strings.Index(kv, "="); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env, nil
}
