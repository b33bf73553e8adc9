package browser

import (
	"context"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	errs "tokclean/pkg/errors"
	"tokclean/pkg/retry"
)

const unfollowConfirmTimeout = 5 * time.Second

// Unfollow opens the Following list, locates the handle's entry fresh
// and clicks its Following button. The entry is looked up at call
// time, never reused from an earlier page state, so preceding probes
// and unfollows cannot leave us holding a stale element.
func (d *Driver) Unfollow(ctx context.Context, handle string) error {
	if err := d.gotoFollowing(ctx); err != nil {
		return errs.Wrap(errs.ErrorTypeAction, "could not open following list for @"+handle, err)
	}

	entry, err := d.findEntry(ctx, handle)
	if err != nil {
		return err
	}

	if err := entry.ScrollIntoView(); err != nil {
		return errs.Wrap(errs.ErrorTypeAction, "could not scroll to @"+handle, err)
	}

	button, err := entry.Timeout(5 * time.Second).ElementR("button", "Following")
	if err != nil {
		button, err = entry.Timeout(3 * time.Second).Element(selFollowButton)
		if err != nil {
			return errs.Wrap(errs.ErrorTypeAction, "no Following button for @"+handle, err)
		}
	}

	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return errs.Wrap(errs.ErrorTypeAction, "failed to click Following button for @"+handle, err)
	}

	return d.confirmUnfollow(ctx, button, handle)
}

// findEntry scans the lazy-loaded list for the handle's entry,
// scrolling further down whenever the loaded entries run out
func (d *Driver) findEntry(ctx context.Context, handle string) (*rod.Element, error) {
	checked := 0
	stagnant := 0

	for {
		items, err := d.page.Context(ctx).Elements(selFollowingItem)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeAction, "failed to read following list", err)
		}

		for _, item := range items[checked:] {
			if h, ok := entryHandle(item); ok && h == handle {
				return item, nil
			}
		}

		if len(items) == checked {
			stagnant++
			if stagnant >= stableScrollPolls {
				return nil, errs.New(errs.ErrorTypeAction, "@"+handle+" not found in following list")
			}
		} else {
			stagnant = 0
			checked = len(items)
		}

		if err := d.scrollFollowingList(ctx); err != nil {
			return nil, err
		}
		if err := retry.Wait(ctx, scrollInterval); err != nil {
			return nil, err
		}
	}
}

// confirmUnfollow waits for the button text to flip away from
// Following. No flip within the window means the click did not land.
func (d *Driver) confirmUnfollow(ctx context.Context, button *rod.Element, handle string) error {
	deadline := time.Now().Add(unfollowConfirmTimeout)

	for {
		text, err := button.Text()
		if err == nil && !strings.Contains(text, "Following") {
			d.logger.WithField("handle", handle).Debug("Unfollow confirmed")
			return nil
		}

		if time.Now().After(deadline) {
			return errs.New(errs.ErrorTypeAction, "unfollow of @"+handle+" was not confirmed")
		}
		if err := retry.Wait(ctx, 250*time.Millisecond); err != nil {
			return err
		}
	}
}
