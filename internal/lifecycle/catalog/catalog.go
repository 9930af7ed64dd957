// Package catalog is the static registry of every entity type that may
// reference a data subject, with its erasure policy and cascade position.
//
// This is the single extension point of the erasure surface: adding a new
// collection to the application requires exactly one entry here. A collection
// missing from the catalog is invisible to both erasure and export, which is
// the classic way erasure goes wrong.
package catalog

import (
	"sort"

	"scoutpost/internal/lifecycle/models"
	dErrors "scoutpost/pkg/domain-errors"
)

// RelationEntry describes one entity type's relationship to a subject.
type RelationEntry struct {
	// EntityType is the unique step key. It names the ledger step and the
	// export section.
	EntityType string

	// Collection is the backing store collection. Defaults to EntityType;
	// set it when two entries cover the same collection through different
	// reference fields (e.g. guardian links from either side).
	Collection string

	// QueryField is the record field holding the subject id.
	QueryField string

	Policy models.Policy

	// Order is the cascade position. Total order, no ties: entries that
	// write into other entries' collections must come strictly earlier.
	Order int

	// Roles restricts the entry to subjects with one of these roles.
	// Empty means the entry applies to every role.
	Roles []models.Role

	// BlobPrefix is set on HARD_DELETE entries whose records own binary
	// assets. The subject's blobs live under BlobPrefix + subjectID + "/".
	BlobPrefix string

	// AnonymizeFields maps identifying fields to their sentinel values.
	// Required for ANONYMIZE entries.
	AnonymizeFields map[string]any

	// DetachFields are the foreign-key fields cleared to nil.
	// Required for DETACH entries.
	DetachFields []string
}

// CollectionName returns the backing collection for store calls.
func (e RelationEntry) CollectionName() string {
	if e.Collection != "" {
		return e.Collection
	}
	return e.EntityType
}

// AppliesTo reports whether the entry is part of the cascade for a subject
// with the given role.
func (e RelationEntry) AppliesTo(role models.Role) bool {
	if len(e.Roles) == 0 {
		return true
	}
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// BlobPrefixFor returns the subject-scoped blob prefix, or "" when the entry
// owns no blobs.
func (e RelationEntry) BlobPrefixFor(subjectID string) string {
	if e.BlobPrefix == "" {
		return ""
	}
	return e.BlobPrefix + subjectID + "/"
}

// Catalog is an immutable, ordered set of relation entries.
type Catalog struct {
	entries []RelationEntry
}

// New validates the entries and returns them as a catalog sorted by Order.
// Validation failures are configuration bugs and carry the policy_violation
// code: the orchestrator must never run against a malformed catalog.
func New(entries ...RelationEntry) (*Catalog, error) {
	seenType := make(map[string]bool, len(entries))
	seenOrder := make(map[int]string, len(entries))

	for _, e := range entries {
		if e.EntityType == "" {
			return nil, dErrors.New(dErrors.CodePolicyViolation, "relation entry missing entity type")
		}
		if e.QueryField == "" {
			return nil, dErrors.Newf(dErrors.CodePolicyViolation, "entry %q missing query field", e.EntityType)
		}
		if !e.Policy.Valid() {
			return nil, dErrors.Newf(dErrors.CodePolicyViolation, "entry %q has unknown policy %q", e.EntityType, e.Policy)
		}
		if seenType[e.EntityType] {
			return nil, dErrors.Newf(dErrors.CodePolicyViolation, "duplicate entity type %q", e.EntityType)
		}
		if other, dup := seenOrder[e.Order]; dup {
			return nil, dErrors.Newf(dErrors.CodePolicyViolation, "entries %q and %q share order %d", other, e.EntityType, e.Order)
		}
		seenType[e.EntityType] = true
		seenOrder[e.Order] = e.EntityType

		switch e.Policy {
		case models.PolicyAnonymize:
			if len(e.AnonymizeFields) == 0 {
				return nil, dErrors.Newf(dErrors.CodePolicyViolation, "ANONYMIZE entry %q has no identity fields", e.EntityType)
			}
		case models.PolicyDetach:
			if len(e.DetachFields) == 0 {
				return nil, dErrors.Newf(dErrors.CodePolicyViolation, "DETACH entry %q has no detach fields", e.EntityType)
			}
		case models.PolicyHardDelete:
			// BlobPrefix optional.
		}
		if e.BlobPrefix != "" && e.Policy != models.PolicyHardDelete {
			return nil, dErrors.Newf(dErrors.CodePolicyViolation, "entry %q owns blobs but is not HARD_DELETE", e.EntityType)
		}
	}

	sorted := make([]RelationEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	return &Catalog{entries: sorted}, nil
}

// Entries returns all entries in cascade order.
func (c *Catalog) Entries() []RelationEntry {
	out := make([]RelationEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// EntriesApplicableTo returns the ordered entries that apply to a subject
// with the given role.
func (c *Catalog) EntriesApplicableTo(role models.Role) []RelationEntry {
	var out []RelationEntry
	for _, e := range c.entries {
		if e.AppliesTo(role) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry for an entity type.
func (c *Catalog) Lookup(entityType string) (RelationEntry, bool) {
	for _, e := range c.entries {
		if e.EntityType == entityType {
			return e, true
		}
	}
	return RelationEntry{}, false
}

// Default is the production catalog for the scouting-unit application.
//
// Ordering rationale: reference-clearing entries (rosters, leaderboard,
// guardian links) run before the records they point at disappear; the profile
// is deleted last so earlier steps can still resolve the subject.
func Default() *Catalog {
	c, err := New(
		RelationEntry{
			EntityType:   "unitRosters",
			QueryField:   "memberId",
			Policy:       models.PolicyDetach,
			Order:        10,
			DetachFields: []string{"memberId"},
		},
		RelationEntry{
			EntityType:   "challengeLeaderboard",
			QueryField:   "subjectId",
			Policy:       models.PolicyDetach,
			Order:        20,
			DetachFields: []string{"subjectId", "displayName"},
		},
		RelationEntry{
			EntityType: "guardianLinks",
			QueryField: "scoutId",
			Policy:     models.PolicyHardDelete,
			Order:      30,
			Roles:      []models.Role{models.RoleScout},
		},
		RelationEntry{
			EntityType: "guardianLinksHeld",
			Collection: "guardianLinks",
			QueryField: "guardianId",
			Policy:     models.PolicyHardDelete,
			Order:      40,
			Roles:      []models.Role{models.RoleGuardian},
		},
		RelationEntry{
			EntityType: "channelMessages",
			QueryField: "authorId",
			Policy:     models.PolicyAnonymize,
			Order:      50,
			AnonymizeFields: map[string]any{
				"authorId":   models.SentinelSubjectID,
				"authorName": models.SentinelDisplayName,
			},
		},
		RelationEntry{
			EntityType: "activityComments",
			QueryField: "authorId",
			Policy:     models.PolicyAnonymize,
			Order:      60,
			AnonymizeFields: map[string]any{
				"authorId":   models.SentinelSubjectID,
				"authorName": models.SentinelDisplayName,
			},
		},
		RelationEntry{
			EntityType: "challengeSubmissions",
			QueryField: "subjectId",
			Policy:     models.PolicyHardDelete,
			Order:      70,
			Roles:      []models.Role{models.RoleScout},
			BlobPrefix: "generated/",
		},
		RelationEntry{
			EntityType: "healthRecords",
			QueryField: "subjectId",
			Policy:     models.PolicyHardDelete,
			Order:      80,
			Roles:      []models.Role{models.RoleScout},
		},
		RelationEntry{
			EntityType: "deviceTokens",
			QueryField: "subjectId",
			Policy:     models.PolicyHardDelete,
			Order:      90,
		},
		RelationEntry{
			EntityType: "profiles",
			QueryField: "subjectId",
			Policy:     models.PolicyHardDelete,
			Order:      100,
			BlobPrefix: "avatars/",
		},
	)
	if err != nil {
		// The default catalog is covered by tests; a panic here means a
		// broken build, not a runtime condition.
		panic(err)
	}
	return c
}
