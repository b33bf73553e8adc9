package browser

import (
	"context"
	"strings"
	"time"

	"tokclean/pkg/classifier"
	errs "tokclean/pkg/errors"
)

// contentWaitTimeout is how long a profile gets to render its video
// grid. Dead profiles never render one, so the wait doubles as settle
// time for the banned/not-found markers.
const contentWaitTimeout = 5 * time.Second

// Markers TikTok renders on dead profiles, matched case-insensitively
// against the page body.
var (
	bannedMarkers = []string{"banned", "banned account"}

	notFoundMarkers = []string{
		"account not found",
		"user not found",
		"couldn't find this account",
		"content is unavailable",
	}
)

// FetchEvidence loads a handle's profile page and reports what is on
// it. A page that cannot be loaded is a fetch failure for the caller
// to handle, never a verdict.
func (d *Driver) FetchEvidence(ctx context.Context, handle string) (classifier.Evidence, error) {
	if err := d.navigateWithRetry(ctx, d.profileURL(handle)); err != nil {
		return classifier.Evidence{}, err
	}

	page := d.page.Context(ctx)

	// A timeout here is informative, not an error
	post, _ := page.Timeout(contentWaitTimeout).Element(selUserPostItem)

	body, err := page.Timeout(contentWaitTimeout).Element("body")
	if err != nil {
		return classifier.Evidence{}, errs.Wrap(errs.ErrorTypeNavigation, "profile page for @"+handle+" has no body", err)
	}
	text, err := body.Text()
	if err != nil {
		return classifier.Evidence{}, errs.Wrap(errs.ErrorTypeNavigation, "failed to read profile page for @"+handle, err)
	}

	return evidenceFromPage(text, post != nil), nil
}

// evidenceFromPage folds the page body and video-grid presence into
// classifier evidence
func evidenceFromPage(bodyText string, hasPosts bool) classifier.Evidence {
	lower := strings.ToLower(bodyText)

	return classifier.Evidence{
		HasContent:     hasPosts,
		BannedMarker:   containsAny(lower, bannedMarkers),
		NotFoundMarker: containsAny(lower, notFoundMarkers),
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
