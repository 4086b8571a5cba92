package replication

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studyforest/internal/storage"
)

// SpaceID returns the install's space id, generating and persisting one on
// first use. A non-empty override joins an existing space without replacing
// the stored id.
func SpaceID(store storage.Store, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return override, nil
	}

	stored, ok := storage.LoadDocument(store, storage.KeySpaceID, validSpaceID)
	if ok {
		return stored, nil
	}

	id := uuid.NewString()
	if err := storage.SaveDocument(store, storage.KeySpaceID, id); err != nil {
		return "", fmt.Errorf("space id: %w", err)
	}
	return id, nil
}

func validSpaceID(id string) error {
	_, err := uuid.Parse(id)
	return err
}
