package surface

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const (
	idlePollInterval = 500 * time.Millisecond
	probeTimeout     = 10 * time.Second
)

// Chrome launches chromedp-backed surfaces and remembers the last launch
// configuration so a broken surface can be replaced wholesale.
type Chrome struct {
	parent context.Context
	logger *log.Logger
	last   *Config
}

// NewChrome creates a launcher whose browsers live at most as long as parent.
func NewChrome(parent context.Context, logger *log.Logger) *Chrome {
	if logger == nil {
		logger = log.Default()
	}
	return &Chrome{parent: parent, logger: logger}
}

// AllocatorOptions translates cfg into chromedp allocator options.
func AllocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.DisableGPU,
	)
	if cfg.Incognito {
		opts = append(opts, chromedp.Flag("incognito", true))
	}
	if cfg.StartMaximized {
		opts = append(opts, chromedp.Flag("start-maximized", true))
	}
	if cfg.DisablePopupBlocking {
		opts = append(opts, chromedp.Flag("disable-popup-blocking", true))
	}
	if cfg.DisableNotifications {
		opts = append(opts, chromedp.Flag("disable-notifications", true))
	}
	if cfg.DisableExtensions {
		opts = append(opts, chromedp.Flag("disable-extensions", true))
	}
	if cfg.DisableInfobars {
		opts = append(opts, chromedp.Flag("disable-infobars", true))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.DisableDevShmUsage {
		opts = append(opts, chromedp.Flag("disable-dev-shm-usage", true))
	}
	if cfg.QuietLogging {
		opts = append(opts, chromedp.Flag("log-level", "3"))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	return opts
}

// Launch starts a new browser with cfg and records cfg for Relaunch.
func (c *Chrome) Launch(cfg Config) (Surface, error) {
	saved := cfg
	c.last = &saved

	allocCtx, allocCancel := chromedp.NewExecAllocator(c.parent, AllocatorOptions(cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(c.logger.Debugf),
		chromedp.WithErrorf(c.logger.Debugf),
	)

	// The first Run starts the browser. It must not carry a timeout, or the
	// browser would die with it.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	c.logger.Debug("chrome started", "headless", cfg.Headless, "incognito", cfg.Incognito)
	return &Browser{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		cfg:    cfg,
		logger: c.logger,
	}, nil
}

// Relaunch closes old and launches a fresh browser with the last recorded
// configuration. When nothing was launched before it fails with
// ErrLaunchNotConfigured and leaves old untouched.
func (c *Chrome) Relaunch(old Surface) (Surface, error) {
	if c.last == nil {
		return nil, ErrLaunchNotConfigured
	}
	if old != nil {
		if err := old.Close(); err != nil {
			c.logger.Warn("closing previous browser", "err", err)
		}
	}
	return c.Launch(*c.last)
}

// Browser is a Surface backed by a single chromedp tab.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config
	logger *log.Logger
	closed bool
}

func (b *Browser) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx := b.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(b.ctx, timeout)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

func (b *Browser) Navigate(url string) error {
	if err := b.run(b.cfg.NavigateTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if !b.AwaitIdle(b.cfg.NavigateTimeout) {
		b.logger.Warn("page did not become idle", "url", url, "timeout", b.cfg.NavigateTimeout)
	}
	return nil
}

func (b *Browser) AwaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		var state string
		err := b.run(probeTimeout, chromedp.Evaluate(`document.readyState`, &state))
		if err == nil && state == "complete" {
			return true
		}
		if time.Now().Add(idlePollInterval).After(deadline) {
			return false
		}
		time.Sleep(idlePollInterval)
	}
}

func (b *Browser) CurrentLocation() (string, error) {
	var location string
	if err := b.run(probeTimeout, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

func (b *Browser) FindAndClick(selector string, timeout time.Duration) error {
	if err := b.run(timeout, chromedp.Click(selector, chromedp.BySearch, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (b *Browser) ScrollIntoView(selector string, timeout time.Duration) error {
	if err := b.run(timeout, chromedp.ScrollIntoView(selector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("scroll to %s: %w", selector, err)
	}
	return nil
}

func (b *Browser) TypeText(selector, text string, submit bool) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.SetValue(selector, "", chromedp.BySearch),
		chromedp.SendKeys(selector, text, chromedp.BySearch),
	}
	if submit {
		actions = append(actions, chromedp.SendKeys(selector, kb.Enter, chromedp.BySearch))
	}
	if err := b.run(b.cfg.TypeTimeout, actions...); err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

func (b *Browser) ReadText(selector string) string {
	var text string
	if err := b.run(probeTimeout, chromedp.Evaluate(readTextJS(selector), &text)); err != nil {
		b.logger.Debug("read text failed", "selector", selector, "err", err)
		return ""
	}
	return text
}

// Close shuts the browser down. Calling it again is a no-op.
func (b *Browser) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	if err != nil {
		return fmt.Errorf("close chrome: %w", err)
	}
	return nil
}

// readTextJS looks the node up without waiting, so a missing element
// yields "" instead of blocking until a timeout.
func readTextJS(xpath string) string {
	quoted, _ := json.Marshal(xpath)
	return fmt.Sprintf(`
	(() => {
		const node = document.evaluate(%s, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!node) return '';
		return (node.innerText || node.textContent || '').trim();
	})()`, quoted)
}
