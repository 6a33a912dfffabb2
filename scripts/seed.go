package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Dev bootstrap: stands up the ledger singletons and a few processors
// against a running API instance. Safe to re-run, conflicts on
// already-initialized accounts are reported and skipped.

func main() {
	baseURL := os.Getenv("SEED_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	ceo := os.Getenv("SEED_CEO_WALLET")
	if ceo == "" {
		ceo = "dev-ceo-wallet"
	}

	client := &http.Client{Timeout: 10 * time.Second}

	steps := []struct {
		name   string
		signer string
		method string
		path   string
		body   map[string]any
	}{
		{"initialize ceo", ceo, http.MethodPost, "/api/admin/ceo", nil},
		{"initialize stats", ceo, http.MethodPost, "/api/admin/stats", nil},
		{"initialize queue", ceo, http.MethodPost, "/api/admin/queue", nil},
		{"register usdc fee token", ceo, http.MethodPost, "/api/admin/fee-tokens",
			map[string]any{"mint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "decimals": 6}},
		{"register usdt fee token", ceo, http.MethodPost, "/api/admin/fee-tokens",
			map[string]any{"mint": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", "decimals": 6}},
		{"create processor one", ceo, http.MethodPost, "/api/admin/processors",
			map[string]any{"identity": "dev-processor-1"}},
		{"create processor two", ceo, http.MethodPost, "/api/admin/processors",
			map[string]any{"identity": "dev-processor-2"}},
		{"promote processor one", ceo, http.MethodPatch, "/api/admin/processors/dev-processor-1",
			map[string]any{"is_super_admin": true}},
		{"create submitter", "dev-submitter-1", http.MethodPost, "/api/submitters", nil},
		{"create patient zero", "dev-submitter-1", http.MethodPost, "/api/patients",
			map[string]any{"index": 0, "first_name": "Ada", "last_name": "Lovelace"}},
	}

	for _, step := range steps {
		var reader *bytes.Reader
		if step.body != nil {
			payload, err := json.Marshal(step.body)
			if err != nil {
				log.Fatalf("%s: marshal: %v", step.name, err)
			}
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequest(step.method, baseURL+step.path, reader)
		if err != nil {
			log.Fatalf("%s: %v", step.name, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Signer", step.signer)

		resp, err := client.Do(req)
		if err != nil {
			log.Fatalf("%s: %v", step.name, err)
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode < 300:
			log.Printf("✓ %s", step.name)
		case resp.StatusCode == http.StatusConflict:
			log.Printf("- %s (already done)", step.name)
		default:
			log.Fatalf("%s: unexpected status %s", step.name, resp.Status)
		}
	}

	fmt.Println("Seeding completed")
}
