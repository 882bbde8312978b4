package surface

import (
	"errors"
	"time"
)

// ErrLaunchNotConfigured is returned by Relaunch when no launch configuration
// has been recorded yet.
var ErrLaunchNotConfigured = errors.New("surface restart requested before any launch")

// Surface is the set of primitives the extraction core drives. Selectors are
// XPath expressions. Operations block until the surface responds or their
// timeout elapses.
type Surface interface {
	// Navigate loads url and waits for the page to become idle.
	Navigate(url string) error
	// AwaitIdle reports whether the page finished loading within timeout.
	AwaitIdle(timeout time.Duration) bool
	// CurrentLocation returns the address currently shown by the surface.
	CurrentLocation() (string, error)
	FindAndClick(selector string, timeout time.Duration) error
	ScrollIntoView(selector string, timeout time.Duration) error
	// TypeText replaces the content of the field and, if submit is set,
	// presses Enter.
	TypeText(selector, text string, submit bool) error
	// ReadText returns the trimmed visible text of the first match, or "" when
	// nothing matches. It never fails.
	ReadText(selector string) string
	Close() error
}

// Config is the launch configuration of a browser surface. It is recorded on
// Launch and reused verbatim on Relaunch.
type Config struct {
	Headless             bool          `yaml:"headless"`
	Incognito            bool          `yaml:"incognito"`
	StartMaximized       bool          `yaml:"start_maximized"`
	DisablePopupBlocking bool          `yaml:"disable_popup_blocking"`
	DisableNotifications bool          `yaml:"disable_notifications"`
	DisableExtensions    bool          `yaml:"disable_extensions"`
	DisableInfobars      bool          `yaml:"disable_infobars"`
	NoSandbox            bool          `yaml:"no_sandbox"`
	DisableDevShmUsage   bool          `yaml:"disable_dev_shm_usage"`
	QuietLogging         bool          `yaml:"quiet_logging"`
	ExecPath             string        `yaml:"exec_path"`
	UserAgent            string        `yaml:"user_agent"`
	WindowWidth          int           `yaml:"window_width"`
	WindowHeight         int           `yaml:"window_height"`
	NavigateTimeout      time.Duration `yaml:"navigate_timeout"`
	TypeTimeout          time.Duration `yaml:"type_timeout"`
}

// DefaultConfig mirrors a visible, maximized desktop Chrome.
func DefaultConfig() Config {
	return Config{
		StartMaximized:  true,
		QuietLogging:    true,
		WindowWidth:     1440,
		WindowHeight:    900,
		NavigateTimeout: 30 * time.Second,
		TypeTimeout:     30 * time.Second,
	}
}
