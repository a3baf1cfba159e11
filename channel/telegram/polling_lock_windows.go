//go:build windows

package telegram

// PollingLock is a no-op on Windows; flock is not available there and
// deployments are unix-only in practice.
type PollingLock struct{}

// AcquirePollingLock always succeeds on Windows.
func AcquirePollingLock(botToken string) (*PollingLock, error) {
	return &PollingLock{}, nil
}

// Release is a no-op.
func (l *PollingLock) Release() error { return nil }
