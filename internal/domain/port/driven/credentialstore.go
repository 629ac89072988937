// Package driven defines the driven ports consumed by the application layer.
package driven

import (
	"context"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
)

// CredentialStore defines the driven port for durable per-account session
// credentials. Keys are account phone numbers; each workflow owns its key
// exclusively for the duration of a run, so the store only needs to be safe
// for concurrent access on distinct keys.
type CredentialStore interface {
	// Get retrieves the credential cached for the given account.
	// Returns (nil, nil) when no credential exists. Adapters must treat a
	// corrupt or unreadable record as a cache miss, not an error.
	Get(ctx context.Context, phone string) (*model.Credential, error)

	// Put stores or replaces the credential for cred.Phone.
	Put(ctx context.Context, cred model.Credential) error

	// Clear blanks the stored session for the given account without removing
	// the record, forcing re-authentication on next use. Clearing an account
	// that has no record is a no-op.
	Clear(ctx context.Context, phone string) error
}
