// Package main implements a standalone smoke script that drives the
// storefront API end to end: it browses the catalog with filters and sorts,
// opens a product detail page, and runs a burst of cart mutations for a set
// of synthetic users. Useful for demoing event debouncing and for a quick
// sanity pass against a freshly deployed stack.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

func httpGet(url, userID string) (map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	return execute(req)
}

func httpSend(method, url, userID string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	return execute(req)
}

func execute(req *http.Request) (map[string]any, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return result, nil
}

// --------------------------------------------------------------------------
// Smoke flows
// --------------------------------------------------------------------------

// browseCatalog walks a few listing variants and returns product IDs.
func browseCatalog(base string) ([]string, error) {
	queries := []string{
		"?per_page=20",
		"?sort=price_asc&per_page=20",
		"?sort=top_rated&in_stock=true",
		"?min_price=10&max_price=500&sort=price_desc",
	}

	var ids []string
	for _, q := range queries {
		result, err := httpGet(base+"/api/v1/products"+q, "")
		if err != nil {
			return nil, fmt.Errorf("list products %s: %w", q, err)
		}
		data, _ := result["data"].(map[string]any)
		products, _ := data["products"].([]any)
		log.Printf("listing %s returned %d products", q, len(products))

		for _, p := range products {
			m, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := m["id"].(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// cartBurst performs a rapid series of cart mutations for one user. The
// storefront should collapse the resulting event stream into a handful of
// debounced cart.updated events.
func cartBurst(base, userID string, productIDs []string) error {
	for i := 0; i < 5; i++ {
		pid := productIDs[rand.Intn(len(productIDs))]
		body := map[string]any{"product_id": pid, "quantity": 1 + rand.Intn(3)}
		if _, err := httpSend(http.MethodPost, base+"/api/v1/cart/items", userID, body); err != nil {
			return fmt.Errorf("add item: %w", err)
		}
	}

	result, err := httpGet(base+"/api/v1/cart", userID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	data, _ := result["data"].(map[string]any)
	log.Printf("user %s cart: total_items=%v total_price=%v", userID, data["total_items"], data["total_price"])

	if _, err := httpSend(http.MethodDelete, base+"/api/v1/cart", userID, nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func main() {
	base := getEnv("STOREFRONT_URL", "http://localhost:8010")
	users := getEnvInt("SMOKE_USERS", 5)

	log.Printf("smoke run against %s with %d users", base, users)
	start := time.Now()

	productIDs, err := browseCatalog(base)
	if err != nil {
		log.Fatalf("catalog browse failed: %v", err)
	}
	if len(productIDs) == 0 {
		log.Fatal("catalog is empty; seed the backend before running the smoke script")
	}

	// Spot-check one product detail page.
	if _, err := httpGet(base+"/api/v1/products/"+productIDs[0], ""); err != nil {
		log.Fatalf("product detail failed: %v", err)
	}

	if _, err := httpGet(base+"/api/v1/categories", ""); err != nil {
		log.Fatalf("category list failed: %v", err)
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < users; i++ {
		userID := fmt.Sprintf("smoke-user-%d", i)
		g.Go(func() error {
			return cartBurst(base, userID, productIDs)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("cart burst failed: %v", err)
	}

	log.Printf("smoke run completed in %s", time.Since(start).Round(time.Millisecond))
}
