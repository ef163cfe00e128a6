//go:build !tinygo

package module

import (
	"errors"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// ErrNotifyUnsupported is returned when no service manager socket is available.
var ErrNotifyUnsupported = errors.New("service manager notification not supported")

// Systemd sends notifications over the NOTIFY_SOCKET of the service manager.
type Systemd struct{}

// Notify implements Notifier.
func (Systemd) Notify(state string) error {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		return err
	}
	if !sent {
		return ErrNotifyUnsupported
	}
	return nil
}

// WatchdogInterval returns the watchdog timeout configured by the service manager,
// or zero when the watchdog is disabled.
func WatchdogInterval() (time.Duration, error) {
	return daemon.SdWatchdogEnabled(false)
}
