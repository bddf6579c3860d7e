package context

import (
	"context"
	"testing"
)

func TestInstallationID(t *testing.T) {
	ctx := context.Background()

	if _, ok := InstallationIDFromContext(ctx); ok {
		t.Error("Expected no installation id in an empty context")
	}

	ctx = WithInstallationID(ctx, "tg-42")
	id, ok := InstallationIDFromContext(ctx)
	if !ok || id != "tg-42" {
		t.Errorf("Expected installation id 'tg-42', but got '%s'", id)
	}
	if MustInstallationIDFromContext(ctx) != "tg-42" {
		t.Error("Expected MustInstallationIDFromContext to return 'tg-42'")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for a missing installation id")
		}
	}()
	MustInstallationIDFromContext(context.Background())
}
