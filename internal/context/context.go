package context

import "context"

type installationIDKey struct{}

func WithInstallationID(ctx context.Context, installationID string) context.Context {
	return context.WithValue(ctx, installationIDKey{}, installationID)
}

func InstallationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(installationIDKey{}).(string)
	return id, ok && id != ""
}

// MustInstallationIDFromContext panics when ctx has no installation id. Use it only
// behind the auth middleware.
func MustInstallationIDFromContext(ctx context.Context) string {
	id, ok := InstallationIDFromContext(ctx)
	if !ok {
		panic("installation id not found in context")
	}
	return id
}
