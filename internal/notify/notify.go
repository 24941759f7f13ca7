package notify

// Notifier pushes short progress messages to the user. Implementations must
// be safe to call with a nil-check free pattern: a nil Notifier is simply
// not invoked by callers.
type Notifier interface {
	Send(message string) error
}
