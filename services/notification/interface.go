package notification

import "context"

// NotificationService is the push gateway used by dispatch and booking
// flows. Delivery is best-effort: callers log failures and move on, a push
// error must never fail the operation that triggered it.
type NotificationService interface {
	NotifyRequester(ctx context.Context, userID, title, body string, data map[string]string) error
	NotifyProvider(ctx context.Context, providerID, title, body string, data map[string]string) error
}
