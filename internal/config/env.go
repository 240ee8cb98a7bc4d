package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is a snapshot of configuration variables. The compiler never reads the
// process environment directly; the CLI builds an Environment once and passes the
// resulting Config down.
type Environment map[string]string

// Lookup returns the value for key and whether it was set.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// ProcessEnvironment snapshots os.Environ.
func ProcessEnvironment() Environment {
	env := make(Environment)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// LoadEnvironment returns the process environment overlaid on the variables read from
// envFiles. Process variables win, so env files only supply defaults; an earlier file
// wins over a later one.
func LoadEnvironment(envFiles ...string) (Environment, error) {
	env := make(Environment)
	for _, path := range envFiles {
		if path == "" {
			continue
		}
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, err
		}
		for k, v := range vars {
			if _, exists := env[k]; !exists {
				env[k] = v
			}
		}
	}
	for k, v := range ProcessEnvironment() {
		env[k] = v
	}
	return env, nil
}
