package badges

// BadgeKey identifies an achievement a user can unlock.
type BadgeKey string

const (
	FirstDonation   BadgeKey = "firstDonation"
	KindSoul        BadgeKey = "kindSoul"
	GenerousHeart   BadgeKey = "generousHeart"
	FirstListing    BadgeKey = "firstListing"
	CommunitySeller BadgeKey = "communitySeller"
	HelperBee       BadgeKey = "helperBee"
	ProfilePro      BadgeKey = "profilePro"
)

// Field names a counter on the user record that a rule reads.
type Field string

const (
	FieldDonationCount    Field = "donationCount"
	FieldTotalDonated     Field = "totalDonated"
	FieldListingCount     Field = "listingCount"
	FieldSharedCount      Field = "sharedCount"
	FieldProfileCompleted Field = "profileCompleted"
)

type valueKind int

const (
	kindMissing valueKind = iota
	kindNumber
	kindBool
)

// Value is a typed counter or threshold. Numbers and booleans never compare equal.
type Value struct {
	kind valueKind
	num  float64
	b    bool
}

func Number(v float64) Value { return Value{kind: kindNumber, num: v} }
func Bool(v bool) Value      { return Value{kind: kindBool, b: v} }

func (v Value) IsBool() bool   { return v.kind == kindBool }
func (v Value) IsNumber() bool { return v.kind == kindNumber }

// Meets reports whether v satisfies threshold. Boolean thresholds need an
// exact boolean match; numeric thresholds need v >= threshold. A missing
// value counts as 0 against a numeric threshold and never matches a boolean one.
func (v Value) Meets(threshold Value) bool {
	switch threshold.kind {
	case kindBool:
		return v.kind == kindBool && v.b == threshold.b
	case kindNumber:
		switch v.kind {
		case kindNumber:
			return v.num >= threshold.num
		case kindMissing:
			return 0 >= threshold.num
		}
	}
	return false
}

// Counters is the subset of the user record the badge rules read.
type Counters struct {
	DonationCount    int        `json:"donationCount"`
	TotalDonated     float64    `json:"totalDonated"`
	ListingCount     int        `json:"listingCount"`
	SharedCount      int        `json:"sharedCount"`
	ProfileCompleted bool       `json:"profileCompleted"`
	Badges           []BadgeKey `json:"badges"`
}

// Value returns the counter named by f. Unknown fields are missing.
func (c Counters) Value(f Field) Value {
	switch f {
	case FieldDonationCount:
		return Number(float64(c.DonationCount))
	case FieldTotalDonated:
		return Number(c.TotalDonated)
	case FieldListingCount:
		return Number(float64(c.ListingCount))
	case FieldSharedCount:
		return Number(float64(c.SharedCount))
	case FieldProfileCompleted:
		return Bool(c.ProfileCompleted)
	}
	return Value{}
}

// HasBadge reports whether key is already unlocked.
func (c Counters) HasBadge(key BadgeKey) bool {
	for _, b := range c.Badges {
		if b == key {
			return true
		}
	}
	return false
}

// Rule unlocks Key once Field meets Threshold.
type Rule struct {
	Key       BadgeKey
	Field     Field
	Threshold Value
}

// Rules is evaluated in declaration order.
var Rules = []Rule{
	{Key: FirstDonation, Field: FieldDonationCount, Threshold: Number(1)},
	{Key: KindSoul, Field: FieldTotalDonated, Threshold: Number(5)},
	{Key: GenerousHeart, Field: FieldTotalDonated, Threshold: Number(100)},
	{Key: FirstListing, Field: FieldListingCount, Threshold: Number(1)},
	{Key: CommunitySeller, Field: FieldListingCount, Threshold: Number(5)},
	{Key: HelperBee, Field: FieldSharedCount, Threshold: Number(3)},
	{Key: ProfilePro, Field: FieldProfileCompleted, Threshold: Bool(true)},
}

// UnlockedEvent is pushed to a connected client when badges unlock.
type UnlockedEvent struct {
	UserID     string     `json:"user_id"`
	Badges     []BadgeKey `json:"badges"`
	UnlockedAt string     `json:"unlocked_at"`
}
