package flagx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Env overlays configuration fields with environment variables sharing a
// common prefix. Unset variables leave the target untouched.
type Env struct {
	Prefix string
}

func (e Env) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(e.Prefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e Env) String(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e Env) Int(key string, dst *int) error {
	v, ok := e.lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", e.Prefix, key, err)
	}
	*dst = n
	return nil
}

func (e Env) Float(key string, dst *float64) error {
	v, ok := e.lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", e.Prefix, key, err)
	}
	*dst = f
	return nil
}

// Duration accepts Go duration strings such as "90s" or "15m".
func (e Env) Duration(key string, dst *time.Duration) error {
	v, ok := e.lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", e.Prefix, key, err)
	}
	*dst = d
	return nil
}

// List splits a comma-separated value, dropping empty items.
func (e Env) List(key string, dst *[]string) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	*dst = SplitList(v)
}

// SplitList splits a comma-separated string into trimmed, non-empty items.
func SplitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
