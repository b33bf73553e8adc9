package browser

import (
	"context"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"tokclean/pkg/auth"
	"tokclean/pkg/config"
	errs "tokclean/pkg/errors"
	"tokclean/pkg/logger"
	"tokclean/pkg/retry"
)

// TikTok web selectors. These belong to the current web frontend and
// are the first thing to check when the tool stops finding anything.
const (
	selProfileIcon       = `[data-e2e="profile-icon"]`
	selFollowingList     = `[data-e2e="following-item-list"]`
	selFollowingItem     = `[data-e2e="following-item"]`
	selFollowingUsername = `[data-e2e="following-username"]`
	selUserPostItem      = `[data-e2e="user-post-item"]`
	selFollowButton      = `[data-e2e="follow-button"]`
)

const (
	defaultNavTimeout  = 30 * time.Second
	viewportWidth      = 1920
	viewportHeight     = 1080
	emailLoginTimeout  = 60 * time.Second
	googleLoginTimeout = 120 * time.Second
)

// Driver owns one Chromium instance and the single page every operation
// runs in. It implements the orchestrator's ResourceLifecycle and
// HandleSource, the classifier's PageInspector and the engine's
// ActionExecutor, so one logged-in session serves the whole run.
// Single-goroutine use only.
type Driver struct {
	cfg    *config.Config
	creds  *auth.Account
	logger logger.Logger

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	// Own handle resolved after login, cached for the following URL
	ownHandle  string
	navTimeout time.Duration
}

// New creates a driver. Nothing is launched until Acquire.
func New(cfg *config.Config, creds *auth.Account) *Driver {
	return &Driver{
		cfg:        cfg,
		creds:      creds,
		logger:     logger.GetLogger(),
		navTimeout: defaultNavTimeout,
	}
}

// Acquire launches the browser, opens the working page and logs in.
// The caller must Release afterwards, also when Acquire fails.
func (d *Driver) Acquire(ctx context.Context) error {
	d.logger.WithFields(map[string]interface{}{
		"headless": d.cfg.TikTok.Headless,
	}).Info("Launching browser")

	d.launcher = launcher.New().
		Headless(d.cfg.TikTok.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled")

	controlURL, err := d.launcher.Launch()
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "failed to connect to browser", err)
	}
	d.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "failed to open page", err)
	}
	d.page = page

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		d.logger.WithError(err).Warn("Failed to set viewport")
	}

	if ua := d.cfg.TikTok.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			d.logger.WithError(err).Warn("Failed to set user agent")
		}
	}

	d.logger.Info("Browser ready")

	return d.login(ctx)
}

// Release closes page, browser and launcher in that order. Every
// step's error is logged and swallowed; the first one is reported as a
// teardown failure so the caller can log it once more.
func (d *Driver) Release() error {
	var first error

	if d.page != nil {
		if err := d.page.Close(); err != nil {
			d.logger.WithError(err).Warn("Failed to close page")
			first = err
		}
		d.page = nil
	}

	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			d.logger.WithError(err).Warn("Failed to close browser")
			if first == nil {
				first = err
			}
		}
		d.browser = nil
	}

	if d.launcher != nil {
		d.launcher.Cleanup()
		d.launcher = nil
	}

	if first != nil {
		return errs.Wrap(errs.ErrorTypeResourceTeardown, "browser teardown incomplete", first)
	}
	return nil
}

// navigate loads a URL on the working page and waits for the load event
func (d *Driver) navigate(ctx context.Context, url string) error {
	page := d.page.Context(ctx).Timeout(d.navTimeout)
	if err := page.Navigate(url); err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "navigation to "+url+" failed", err)
	}
	if err := page.WaitLoad(); err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "page load for "+url+" did not finish", err)
	}
	return nil
}

// navigateWithRetry loads a URL, retrying once on a transient failure
func (d *Driver) navigateWithRetry(ctx context.Context, url string) error {
	cfg := retry.DefaultConfig()
	cfg.Context = ctx
	cfg.Backoff = &retry.ConstantBackoff{Delay: 2 * time.Second}

	return retry.Do(func() error {
		return d.navigate(ctx, url)
	}, cfg)
}

// baseURL returns the configured TikTok origin without a trailing slash
func (d *Driver) baseURL() string {
	return strings.TrimRight(d.cfg.TikTok.BaseURL, "/")
}

// profileURL builds the public profile URL for a handle
func (d *Driver) profileURL(handle string) string {
	return d.baseURL() + "/@" + handle
}

// currentURL reads the page's current location
func (d *Driver) currentURL() string {
	info, err := d.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}
