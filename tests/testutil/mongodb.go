// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	defaultMongoURI = "mongodb://localhost:27017"
	connectTimeout  = 5 * time.Second
)

// SetupTestDatabase connects to a local MongoDB instance and returns a
// database scoped to the calling test. The database is dropped and the
// client disconnected on cleanup.
//
// The URI can be overridden with TEST_MONGODB_URI. When no instance is
// reachable the test is skipped, so the suite stays runnable without
// infrastructure.
func SetupTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		uri = defaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongodb unavailable at %s: %v", uri, err)
	}

	if pingErr := client.Ping(ctx, nil); pingErr != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongodb unavailable at %s: %v", uri, pingErr)
	}

	dbName := "liza_test_" + sanitizeName(t.Name())
	db := client.Database(dbName)

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cleanupCancel()

		if dropErr := db.Drop(cleanupCtx); dropErr != nil {
			t.Logf("failed to drop test database %s: %v", dbName, dropErr)
		}
		if discErr := client.Disconnect(cleanupCtx); discErr != nil {
			t.Logf("failed to disconnect mongodb client: %v", discErr)
		}
	})

	return db
}

// sanitizeName makes a test name safe for use as a database name.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", " ", "_", ".", "_")
	return replacer.Replace(name)
}
