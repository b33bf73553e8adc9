package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tokclean/pkg/classifier"
)

// TestFakeSiteFunctionality tests that the fake site behaves like the
// profile pages the classifier was built against
func TestFakeSiteFunctionality(t *testing.T) {
	fake := NewFakeTikTok()
	fake.FollowAlive("alive")
	fake.FollowBanned("banned")
	fake.FollowDeleted("deleted")
	fake.FollowEmpty("empty")

	ctx := context.Background()
	if err := fake.Acquire(ctx); err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	handles, err := fake.DiscoverFollowing(ctx)
	if err != nil {
		t.Fatalf("Failed to discover following: %v", err)
	}
	if len(handles) != 4 || handles[0] != "alive" || handles[3] != "empty" {
		t.Errorf("Expected the 4 handles in follow order, got %v", handles)
	}

	cases := []struct {
		handle   string
		evidence classifier.Evidence
	}{
		{"alive", classifier.Evidence{HasContent: true}},
		{"banned", classifier.Evidence{BannedMarker: true}},
		{"deleted", classifier.Evidence{NotFoundMarker: true}},
		{"empty", classifier.Evidence{}},
		{"never_followed", classifier.Evidence{NotFoundMarker: true}},
	}
	for _, tc := range cases {
		evidence, err := fake.FetchEvidence(ctx, tc.handle)
		if err != nil {
			t.Fatalf("Failed to fetch evidence for @%s: %v", tc.handle, err)
		}
		if evidence != tc.evidence {
			t.Errorf("@%s: expected %+v, got %+v", tc.handle, tc.evidence, evidence)
		}
	}

	if fake.TotalProbes() != 5 {
		t.Errorf("Expected 5 probes recorded, got %d", fake.TotalProbes())
	}
}

// TestFakeSiteRequiresSession tests that nothing works outside an
// acquired session, mirroring pages that redirect to the login wall
func TestFakeSiteRequiresSession(t *testing.T) {
	fake := NewFakeTikTok()
	fake.FollowAlive("alive")
	ctx := context.Background()

	if _, err := fake.DiscoverFollowing(ctx); err == nil {
		t.Error("Discovery must fail before Acquire")
	}
	if _, err := fake.FetchEvidence(ctx, "alive"); err == nil {
		t.Error("Probing must fail before Acquire")
	}
	if err := fake.Unfollow(ctx, "alive"); err == nil {
		t.Error("Unfollowing must fail before Acquire")
	}

	if err := fake.Acquire(ctx); err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	if err := fake.Release(); err != nil {
		t.Fatalf("Failed to close session: %v", err)
	}

	if _, err := fake.DiscoverFollowing(ctx); err == nil {
		t.Error("Discovery must fail after Release")
	}
}

// TestFakeSiteUnfollow tests the mutating following list
func TestFakeSiteUnfollow(t *testing.T) {
	fake := NewFakeTikTok()
	fake.FollowAlive("first")
	fake.FollowAlive("second")

	ctx := context.Background()
	if err := fake.Acquire(ctx); err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	if err := fake.Unfollow(ctx, "first"); err != nil {
		t.Fatalf("Failed to unfollow: %v", err)
	}
	if fake.FollowingCount() != 1 {
		t.Errorf("Expected 1 account left, got %d", fake.FollowingCount())
	}

	// A second unfollow of the same handle has nothing to act on
	if err := fake.Unfollow(ctx, "first"); err == nil {
		t.Error("Expected an error unfollowing a handle twice")
	}

	// Both attempts are on the attempt log, only one succeeded
	if attempts := fake.UnfollowAttempts(); len(attempts) != 2 {
		t.Errorf("Expected 2 attempts recorded, got %v", attempts)
	}
	if unfollowed := fake.Unfollowed(); len(unfollowed) != 1 {
		t.Errorf("Expected 1 successful unfollow, got %v", unfollowed)
	}
}

// TestProbeErrorSurfacesAsValid tests error simulation end to end:
// a probe failure must classify as a keeper, never as a candidate
func TestProbeErrorSurfacesAsValid(t *testing.T) {
	fake := NewFakeTikTok()
	fake.FollowBanned("flaky")
	fake.SetProbeError("flaky", fmt.Errorf("page timed out"))

	ctx := context.Background()
	if err := fake.Acquire(ctx); err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	record := classifier.New(fake).Classify(ctx, "flaky")
	if record.Verdict != classifier.VerdictValid {
		t.Errorf("Expected a probe error to fall back to valid, got %s", record.Verdict)
	}
	if record.ProbeErr == nil {
		t.Error("Expected the probe error to be carried on the record")
	}
	if record.IsCandidate() {
		t.Error("A probe error must never produce an unfollow candidate")
	}

	// Clear the error and the banned page shows through
	fake.SetProbeError("flaky", nil)
	record = classifier.New(fake).Classify(ctx, "flaky")
	if record.Verdict != classifier.VerdictInvalid || record.Reason != classifier.ReasonBanned {
		t.Errorf("Expected banned verdict after clearing the error, got %+v", record)
	}
}

// TestStateDurabilityAcrossStores tests that every mutation is on disk
// before the call returns: a second store opened on the same path sees
// everything the first one wrote
func TestStateDurabilityAcrossStores(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	first := helper.NewStore()
	if err := first.MarkProcessed("checked"); err != nil {
		t.Fatalf("Failed to mark processed: %v", err)
	}
	if err := first.RecordUnfollow("removed", time.Now()); err != nil {
		t.Fatalf("Failed to record unfollow: %v", err)
	}

	second := helper.NewStore()
	if !second.IsProcessed("checked") {
		t.Error("Expected the reloaded store to see the processed mark")
	}
	if !second.IsProcessed("removed") {
		t.Error("Expected an unfollow record to imply processed")
	}
	if second.UnfollowedCount() != 1 {
		t.Errorf("Expected 1 unfollow record after reload, got %d", second.UnfollowedCount())
	}
}

// TestConcurrentStoresLastWriterWins pins down the no-locking contract:
// two instances pointed at one state file do not merge, the later save
// simply replaces the earlier one. Running two copies at once is on the
// operator.
func TestConcurrentStoresLastWriterWins(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()

	// Both instances load the same empty snapshot before either writes
	first := helper.NewStore()
	first.Load()
	second := helper.NewStore()
	second.Load()

	if err := first.MarkProcessed("from_first"); err != nil {
		t.Fatalf("Failed to mark processed: %v", err)
	}
	if err := second.MarkProcessed("from_second"); err != nil {
		t.Fatalf("Failed to mark processed: %v", err)
	}

	st := helper.ReadStateFile()
	if len(st.ProcessedAccounts) != 1 || st.ProcessedAccounts[0] != "from_second" {
		t.Errorf("Expected the later writer's view only, got %v", st.ProcessedAccounts)
	}
}
