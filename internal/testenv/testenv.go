// Package testenv provides fixtures shared by the tests of docmodel:
// stores, acting users and environment lookups for integration tests.
package testenv

import (
	"os"
	"testing"

	"github.com/sanskrit-coders/docmodel/pkg/store/memory"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

const (
	// FrontendName is the service the fixture users are authorized
	// against.
	FrontendName = "docmodel-test"

	// EnvPostgresDSN names the database Postgres integration tests use.
	// The tests are skipped when it is unset.
	EnvPostgresDSN = "DOCMODEL_POSTGRES_DSN"
)

// NewStore returns an empty in-memory store whose external file store is a
// temporary directory removed after the test.
func NewStore(t testing.TB) *memory.Store {
	t.Helper()
	return memory.New(
		memory.WithFrontendName(FrontendName),
		memory.WithExternalFileStore(t.TempDir()),
	)
}

// Human returns a human user who administers nothing.
func Human(ids ...string) *user.Static {
	return &user.Static{IDs: ids, Human: true}
}

// Admin returns a human administrator of FrontendName.
func Admin(ids ...string) *user.Static {
	return &user.Static{IDs: ids, AdminOf: []string{FrontendName}, Human: true}
}

// Bot returns a non-human user who administers nothing.
func Bot(ids ...string) *user.Static {
	return &user.Static{IDs: ids}
}

// PostgresDSN returns the integration database or skips the test.
func PostgresDSN(t testing.TB) string {
	t.Helper()
	dsn := os.Getenv(EnvPostgresDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping", EnvPostgresDSN)
	}
	return dsn
}
