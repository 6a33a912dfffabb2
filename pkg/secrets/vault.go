package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultPath is the KV path holding the claims engine's secrets
// (DB_PASSWORD, REDIS_PASSWORD and the like) when VAULT_PATH is unset.
const defaultPath = "claimsledger/api"

// Config describes where the engine's secrets live in Vault. Secrets are
// pulled once at startup and applied to the environment before config.Load
// reads it.
type Config struct {
	Enabled   bool
	Addr      string
	Token     string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// Result reports what a load did, for startup logging.
type Result struct {
	Enabled bool
	Path    string
	Loaded  int
	Skipped int
}

// ConfigFromEnv reads the VAULT_* environment variables, filling in the
// engine's defaults for anything unset.
func ConfigFromEnv() Config {
	mount := os.Getenv("VAULT_MOUNT")
	if mount == "" {
		mount = "secret"
	}
	path := os.Getenv("VAULT_PATH")
	if path == "" {
		path = defaultPath
	}
	kvVersion := 2
	if raw := os.Getenv("VAULT_KV_VERSION"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			kvVersion = parsed
		}
	}
	timeout := 5 * time.Second
	if raw := os.Getenv("VAULT_TIMEOUT_MS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			timeout = time.Duration(parsed) * time.Millisecond
		}
	}

	return Config{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Mount:     mount,
		Path:      path,
		KVVersion: kvVersion,
		Timeout:   timeout,
		Overwrite: strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true"),
	}
}

// Apply fetches the configured KV entry and exports each key into the
// process environment. Existing variables win unless Overwrite is set.
func Apply(ctx context.Context, cfg Config) (Result, error) {
	if !cfg.Enabled {
		return Result{Enabled: false}, nil
	}
	if cfg.Addr == "" || cfg.Token == "" {
		return Result{Enabled: true, Path: cfg.Path}, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN)")
	}

	data, err := fetch(ctx, cfg)
	if err != nil {
		return Result{Enabled: true, Path: cfg.Path}, err
	}

	loaded, skipped := 0, 0
	for key, value := range data {
		if !cfg.Overwrite && os.Getenv(key) != "" {
			skipped++
			continue
		}
		if err := os.Setenv(key, stringify(value)); err != nil {
			return Result{Enabled: true, Path: cfg.Path, Loaded: loaded, Skipped: skipped}, err
		}
		loaded++
	}

	return Result{Enabled: true, Path: cfg.Path, Loaded: loaded, Skipped: skipped}, nil
}

func fetch(ctx context.Context, cfg Config) (map[string]interface{}, error) {
	url, err := buildURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return extractData(payload, cfg.KVVersion)
}

func buildURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount, and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

// extractData unwraps the response body. KV v2 nests the entry one level
// deeper than v1.
func extractData(payload map[string]interface{}, kvVersion int) (map[string]interface{}, error) {
	data, ok := payload["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("vault response missing data")
	}
	if kvVersion == 1 {
		return data, nil
	}
	inner, ok := data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("vault response missing data for KV v2")
	}
	return inner, nil
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
