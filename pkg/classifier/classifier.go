package classifier

import (
	"context"

	"tokclean/pkg/logger"
)

// Verdict is the classification outcome for one account. The zero
// value means no classification has been recorded.
type Verdict string

const (
	VerdictUnknown Verdict = ""
	VerdictValid   Verdict = "valid"
	VerdictInvalid Verdict = "invalid"
)

// Reasons attached to Invalid verdicts
const (
	ReasonBanned    = "Banned account"
	ReasonNotFound  = "Account not found"
	ReasonNoContent = "No videos found"
)

// Evidence is the normalized snapshot a profile probe observed
type Evidence struct {
	// HasContent is true when the profile shows at least one posted item
	HasContent bool
	// BannedMarker is true when the page carries an explicit ban notice
	BannedMarker bool
	// NotFoundMarker is true when the page says the account does not exist
	NotFoundMarker bool
}

// PageInspector fetches profile evidence for a handle
type PageInspector interface {
	FetchEvidence(ctx context.Context, handle string) (Evidence, error)
}

// AccountRecord is the outcome of classifying one handle
type AccountRecord struct {
	Handle  string
	Verdict Verdict
	Reason  string
	// ProbeErr is set when evidence could not be fetched; the verdict
	// is Valid in that case, never Invalid
	ProbeErr error
}

// IsCandidate reports whether the account should be queued for unfollowing
func (r AccountRecord) IsCandidate() bool {
	return r.Verdict == VerdictInvalid
}

// Classifier decides account verdicts from probe evidence
type Classifier struct {
	inspector PageInspector
	logger    logger.Logger
}

// New creates a classifier over the given inspector
func New(inspector PageInspector) *Classifier {
	return &Classifier{
		inspector: inspector,
		logger:    logger.GetLogger(),
	}
}

// Classify probes handle and applies fixed-priority rules, first match
// wins: ban marker, not-found marker, probe failure, missing content,
// otherwise Valid. A failed probe yields Valid: ambiguity never marks
// an account Invalid.
func (c *Classifier) Classify(ctx context.Context, handle string) AccountRecord {
	evidence, err := c.inspector.FetchEvidence(ctx, handle)
	if err != nil {
		c.logger.WithError(err).WithField("handle", handle).
			Warn("Profile check failed, keeping account")
		return AccountRecord{Handle: handle, Verdict: VerdictValid, ProbeErr: err}
	}

	record := Decide(handle, evidence)
	logger.LogClassification(record.Handle, string(record.Verdict), record.Reason)
	return record
}

// Decide applies the classification rules to an evidence snapshot. It
// is pure: identical evidence always yields an identical record.
func Decide(handle string, evidence Evidence) AccountRecord {
	switch {
	case evidence.BannedMarker:
		return AccountRecord{Handle: handle, Verdict: VerdictInvalid, Reason: ReasonBanned}
	case evidence.NotFoundMarker:
		return AccountRecord{Handle: handle, Verdict: VerdictInvalid, Reason: ReasonNotFound}
	case !evidence.HasContent:
		return AccountRecord{Handle: handle, Verdict: VerdictInvalid, Reason: ReasonNoContent}
	default:
		return AccountRecord{Handle: handle, Verdict: VerdictValid}
	}
}
