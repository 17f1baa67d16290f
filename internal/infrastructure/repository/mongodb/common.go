package mongodb

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lizachat/liza/internal/domain/errs"
)

// HandleMongoError converts a MongoDB driver error into a domain error.
// Returns:
//   - nil if err == nil
//   - errs.ErrNotFound if no document matched
//   - errs.ErrAlreadyExists on a unique constraint violation
//   - a wrapped error otherwise
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// UpsertOptions returns standard options for an upsert that yields the
// post-update document.
func UpsertOptions() *options.FindOneAndUpdateOptionsBuilder {
	return options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
}
