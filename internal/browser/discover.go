package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	errs "tokclean/pkg/errors"
	"tokclean/pkg/retry"
)

const (
	// TikTok lazy-loads the following list; the count is only
	// trustworthy after it survives three polls unchanged.
	scrollInterval      = 2 * time.Second
	stableScrollPolls   = 3
	maxEmptyScrollPolls = 10
	maxFollowingEntries = 15000
)

// DiscoverFollowing opens the account's Following page, scrolls until
// the whole list is loaded and returns the handles in list order.
// Entries without a readable handle are skipped with a warning; there
// is nothing to probe or unfollow without one.
func (d *Driver) DiscoverFollowing(ctx context.Context) ([]string, error) {
	if err := d.gotoFollowing(ctx); err != nil {
		return nil, err
	}

	if err := d.loadFullList(ctx); err != nil {
		return nil, err
	}

	items, err := d.page.Context(ctx).Elements(selFollowingItem)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNavigation, "failed to read following list", err)
	}

	handles := make([]string, 0, len(items))
	unreadable := 0
	for _, item := range items {
		handle, ok := entryHandle(item)
		if !ok {
			unreadable++
			continue
		}
		handles = append(handles, handle)
	}

	if unreadable > 0 {
		d.logger.WithField("count", unreadable).Warn("Skipped following entries without a readable handle")
	}
	d.logger.WithField("count", len(handles)).Info("Following list discovered")

	return handles, nil
}

// gotoFollowing navigates to the logged-in account's following page,
// resolving the account's own handle first when it is not configured
func (d *Driver) gotoFollowing(ctx context.Context) error {
	if d.ownHandle == "" {
		if handle := normalizeHandle(d.cfg.TikTok.Username); handle != "" {
			d.ownHandle = handle
		} else {
			handle, err := d.resolveOwnHandle(ctx)
			if err != nil {
				return err
			}
			d.ownHandle = handle
		}
	}

	if err := d.navigateWithRetry(ctx, d.profileURL(d.ownHandle)+"/following"); err != nil {
		return err
	}

	if !strings.Contains(strings.ToLower(d.currentURL()), "/following") {
		return errs.New(errs.ErrorTypeNavigation, "did not land on the following page")
	}
	return nil
}

// resolveOwnHandle clicks the profile icon and reads the handle out of
// the resulting profile URL
func (d *Driver) resolveOwnHandle(ctx context.Context) (string, error) {
	icon, err := d.page.Context(ctx).Timeout(10 * time.Second).Element(selProfileIcon)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNavigation, "profile icon not found", err)
	}
	if err := icon.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", errs.Wrap(errs.ErrorTypeNavigation, "failed to open own profile", err)
	}

	// Give the profile page a moment to settle before reading the URL
	if err := retry.Wait(ctx, 2*time.Second); err != nil {
		return "", err
	}

	handle, err := handleFromProfileURL(d.currentURL())
	if err != nil {
		return "", err
	}

	d.logger.WithField("handle", handle).Debug("Resolved own handle")
	return handle, nil
}

// loadFullList scrolls the following panel until the entry count stops
// growing
func (d *Driver) loadFullList(ctx context.Context) error {
	prev := 0
	stagnant := 0

	for {
		if err := d.scrollFollowingList(ctx); err != nil {
			return err
		}
		if err := retry.Wait(ctx, scrollInterval); err != nil {
			return err
		}

		items, err := d.page.Context(ctx).Elements(selFollowingItem)
		if err != nil {
			return errs.Wrap(errs.ErrorTypeNavigation, "failed to count following entries", err)
		}
		count := len(items)
		d.logger.WithField("count", count).Debug("Loading following list")

		if count == prev {
			stagnant++
			if count > 0 && stagnant >= stableScrollPolls {
				return nil
			}
			// An empty list gets more patience before we give up
			if count == 0 && stagnant >= maxEmptyScrollPolls {
				d.logger.Warn("Following list never loaded any entries")
				return nil
			}
		} else {
			stagnant = 0
		}
		prev = count

		if count > maxFollowingEntries {
			d.logger.WithField("count", count).Warn("Following list very large, stopping the scroll")
			return nil
		}
	}
}

// scrollFollowingList scrolls the list container to its bottom, or the
// window when the container is not there
func (d *Driver) scrollFollowingList(ctx context.Context) error {
	js := fmt.Sprintf(`
	() => {
		const container = document.querySelector('%s');
		if (container) {
			container.scrollTo(0, container.scrollHeight);
			return true;
		}
		window.scrollTo(0, document.body.scrollHeight);
		return true;
	}
	`, selFollowingList)

	_, err := d.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "failed to scroll following list", err)
	}
	return nil
}

// entryHandle reads the handle out of one following-list entry
func entryHandle(item *rod.Element) (string, bool) {
	els, err := item.Elements(selFollowingUsername)
	if err != nil || len(els) == 0 {
		return "", false
	}

	text, err := els.First().Text()
	if err != nil {
		return "", false
	}

	handle := normalizeHandle(text)
	return handle, handle != ""
}

// normalizeHandle strips the @ prefix and whitespace from a username.
// An empty result means no usable handle; TikTok renders some deleted
// accounts with a bare @ or a single character placeholder.
func normalizeHandle(text string) string {
	handle := strings.TrimSpace(text)
	handle = strings.TrimPrefix(handle, "@")
	handle = strings.TrimSpace(handle)
	if len(handle) <= 1 {
		return ""
	}
	return handle
}

// handleFromProfileURL pulls the handle out of a profile URL like
// https://www.tiktok.com/@someone?lang=en
func handleFromProfileURL(url string) (string, error) {
	i := strings.LastIndex(url, "@")
	if i < 0 {
		return "", errs.New(errs.ErrorTypeNavigation, "no handle in profile URL "+url)
	}

	handle := url[i+1:]
	if j := strings.IndexAny(handle, "/?"); j >= 0 {
		handle = handle[:j]
	}
	if len(handle) < 2 {
		return "", errs.Newf(errs.ErrorTypeNavigation, "implausible handle %q in profile URL", handle)
	}

	return handle, nil
}
