package allocation

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var ErrNoSuchTarget = errors.New("no such target")

// Target is the desired share of the portfolio for a bucket.
type Target struct {
	// Bucket is either a holding name or a group like CASH.
	Bucket   string  `json:"bucket"`
	Fraction Percent `json:"fraction"`
	// Members pins the holdings of the bucket. When empty, membership is
	// decided by Matches.
	Members []string `json:"members,omitempty"`
}

// Matches reports whether h belongs to the bucket: listed in Members, or else
// its name contains the bucket name, or its category is the bucket name.
// Comparisons ignore case.
func (t Target) Matches(h Holding) bool {
	if len(t.Members) > 0 {
		return lo.Contains(t.Members, h.Name)
	}
	if t.Bucket == "" || h.Name == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(h.Name), strings.ToUpper(t.Bucket)) ||
		strings.EqualFold(h.Category, t.Bucket)
}

// TargetAllocation is the ordered list of target buckets.
//
// Fractions do not have to add up to 100%, they are used as is.
type TargetAllocation []Target

// Sum is the total of all target fractions.
func (ta TargetAllocation) Sum() Percent {
	return lo.Reduce(ta, func(acc Percent, t Target, _ int) Percent { return acc.Add(t.Fraction) }, Percent{})
}

// Get returns the target of bucket.
func (ta TargetAllocation) Get(bucket string) (Target, bool) {
	return lo.Find(ta, func(t Target) bool { return t.Bucket == bucket })
}

// Set replaces or appends t.
func (ta *TargetAllocation) Set(t Target) error {
	if strings.TrimSpace(t.Bucket) == "" {
		return errors.New("target has no bucket name")
	}
	if i := slices.IndexFunc(*ta, func(x Target) bool { return x.Bucket == t.Bucket }); i >= 0 {
		(*ta)[i] = t
		return nil
	}
	*ta = append(*ta, t)
	return nil
}

// Remove deletes the target of bucket.
func (ta *TargetAllocation) Remove(bucket string) error {
	i := slices.IndexFunc(*ta, func(x Target) bool { return x.Bucket == bucket })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchTarget, bucket)
	}
	*ta = slices.Delete(*ta, i, i+1)
	return nil
}
