package badges

import (
	"reflect"
	"testing"

	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
)

func TestEvaluate_ThresholdBoundary(t *testing.T) {
	res := Evaluate(badges.Counters{DonationCount: 1})
	if !reflect.DeepEqual(res.Unlocked, []badges.BadgeKey{badges.FirstDonation}) {
		t.Fatalf("Expected firstDonation at donationCount=1, got %v", res.Unlocked)
	}

	res = Evaluate(badges.Counters{DonationCount: 0})
	if len(res.Unlocked) != 0 {
		t.Fatalf("Expected nothing at donationCount=0, got %v", res.Unlocked)
	}

	res = Evaluate(badges.Counters{TotalDonated: 4.99})
	if len(res.Unlocked) != 0 {
		t.Fatalf("Expected nothing below kindSoul threshold, got %v", res.Unlocked)
	}

	res = Evaluate(badges.Counters{TotalDonated: 5})
	if !reflect.DeepEqual(res.Unlocked, []badges.BadgeKey{badges.KindSoul}) {
		t.Fatalf("Expected kindSoul at exactly 5, got %v", res.Unlocked)
	}
}

func TestEvaluate_MultiUnlockInTableOrder(t *testing.T) {
	res := Evaluate(badges.Counters{
		DonationCount: 10,
		TotalDonated:  150,
		ListingCount:  6,
	})

	want := []badges.BadgeKey{
		badges.FirstDonation,
		badges.KindSoul,
		badges.GenerousHeart,
		badges.FirstListing,
		badges.CommunitySeller,
	}
	if !reflect.DeepEqual(res.Unlocked, want) {
		t.Fatalf("Expected %v, got %v", want, res.Unlocked)
	}
	if !reflect.DeepEqual(res.Badges, want) {
		t.Fatalf("Expected badge set %v, got %v", want, res.Badges)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	counters := badges.Counters{
		DonationCount:    3,
		TotalDonated:     20,
		ListingCount:     1,
		SharedCount:      3,
		ProfileCompleted: true,
	}

	first := Evaluate(counters)
	if len(first.Unlocked) != 5 {
		t.Fatalf("Expected 5 unlocks on first pass, got %v", first.Unlocked)
	}

	counters.Badges = first.Badges
	second := Evaluate(counters)
	if len(second.Unlocked) != 0 {
		t.Fatalf("Expected no unlocks on re-evaluation, got %v", second.Unlocked)
	}
	if !reflect.DeepEqual(second.Badges, first.Badges) {
		t.Fatalf("Expected badge set to be unchanged, got %v", second.Badges)
	}
}

func TestEvaluate_Monotonic(t *testing.T) {
	// Counters no longer meet the thresholds but held badges stay.
	res := Evaluate(badges.Counters{
		Badges: []badges.BadgeKey{badges.CommunitySeller, badges.ProfilePro},
	})
	if len(res.Unlocked) != 0 {
		t.Fatalf("Expected no unlocks, got %v", res.Unlocked)
	}
	want := []badges.BadgeKey{badges.CommunitySeller, badges.ProfilePro}
	if !reflect.DeepEqual(res.Badges, want) {
		t.Fatalf("Expected held badges to be kept, got %v", res.Badges)
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	held := []badges.BadgeKey{badges.FirstListing, badges.FirstListing}
	counters := badges.Counters{ListingCount: 5, Badges: held}

	res := Evaluate(counters)

	if len(held) != 2 || held[0] != badges.FirstListing || held[1] != badges.FirstListing {
		t.Fatalf("Input badges were modified: %v", held)
	}
	want := []badges.BadgeKey{badges.FirstListing, badges.CommunitySeller}
	if !reflect.DeepEqual(res.Badges, want) {
		t.Fatalf("Expected deduplicated set %v, got %v", want, res.Badges)
	}
}

func TestEvaluate_ProfileCompletedExactMatch(t *testing.T) {
	res := Evaluate(badges.Counters{ProfileCompleted: true})
	if !reflect.DeepEqual(res.Unlocked, []badges.BadgeKey{badges.ProfilePro}) {
		t.Fatalf("Expected profilePro, got %v", res.Unlocked)
	}

	res = Evaluate(badges.Counters{ProfileCompleted: false})
	if len(res.Unlocked) != 0 {
		t.Fatalf("Expected nothing for incomplete profile, got %v", res.Unlocked)
	}
}

func TestEvaluateWith_TypeMismatchNeverMatches(t *testing.T) {
	rules := []badges.Rule{
		// boolean threshold on a numeric counter
		{Key: "boolOnNumber", Field: badges.FieldListingCount, Threshold: badges.Bool(true)},
		// numeric threshold on a boolean counter
		{Key: "numberOnBool", Field: badges.FieldProfileCompleted, Threshold: badges.Number(1)},
		// unknown field against numeric zero counts as 0
		{Key: "missingZero", Field: "unknown", Threshold: badges.Number(0)},
		// unknown field never matches a boolean
		{Key: "missingBool", Field: "unknown", Threshold: badges.Bool(false)},
	}

	res := EvaluateWith(rules, badges.Counters{ListingCount: 1, ProfileCompleted: true})
	if !reflect.DeepEqual(res.Unlocked, []badges.BadgeKey{"missingZero"}) {
		t.Fatalf("Expected only missingZero, got %v", res.Unlocked)
	}
}

func TestRulesTableOrder(t *testing.T) {
	want := []badges.BadgeKey{
		badges.FirstDonation,
		badges.KindSoul,
		badges.GenerousHeart,
		badges.FirstListing,
		badges.CommunitySeller,
		badges.HelperBee,
		badges.ProfilePro,
	}

	got := make([]badges.BadgeKey, len(badges.Rules))
	for i, r := range badges.Rules {
		got[i] = r.Key
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Unexpected rule order: %v", got)
	}
}
