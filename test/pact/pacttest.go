//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "bookstore-api"
	ConsumerName = "bookstore-web"

	StateCatalogBaseline = "catalog baseline"
	StateBookExists      = "book with id 101 exists"
	StateEmptyCart       = "customer pact-user has an empty cart"
	StateCartHasBook     = "customer pact-user has 2 copies of book 101 in the cart"
)

const (
	ExistingBookID int64 = 101
	MissingBookID  int64 = 404

	CustomerUsername = "pact-user"
	CustomerPassword = "pact-password"
	// CustomerToken is the bearer token the provider installs for the customer.
	CustomerToken = "pact-customer-token"
)

// Seeded book details.
const (
	ExampleBookTitle  = "The Pact Handbook"
	ExampleBookAuthor = "Contract Tester"
	ExampleBookPrice  = "12.50"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleBookPayload provides stable catalog data for pact interactions.
func ExampleBookPayload() map[string]any {
	return map[string]any{
		"id":           ExistingBookID,
		"title":        ExampleBookTitle,
		"author":       ExampleBookAuthor,
		"price":        ExampleBookPrice,
		"availability": 5,
		"category":     "Testing",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
