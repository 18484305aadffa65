package video

import (
	"fmt"
	"log/slog"
)

// PolicyMode selects what happens to previously persisted records when an
// event is scraped again.
type PolicyMode string

const (
	// PolicyReplaceAll discards every previously stored record; only freshly
	// scraped ones survive, and stale files are wiped from disk.
	PolicyReplaceAll PolicyMode = "replace_all"
	// PolicyMerge keeps the old set as the base and applies the AddNewFiles /
	// OverwriteFields toggles.
	PolicyMerge PolicyMode = "merge"
	// PolicyReplaceNewOnly keeps only freshly scraped records and ignores any
	// prior stored data entirely. Default when no policy is configured.
	PolicyReplaceNewOnly PolicyMode = "replace_new_only"
)

// Policy is the per-event overwrite policy. Exactly one mode applies; the
// merge sub-options are independent toggles.
type Policy struct {
	Mode            PolicyMode
	AddNewFiles     bool
	OverwriteFields []string
}

// Reconcile computes the final record set from the freshly normalized records
// and the previously persisted ones.
//
// Identity across the two sets is the first playback-location URL, never the
// title or the derived slug: titles get edited between scrapes, and a title
// edit must not spawn a duplicate record. Whenever a new record's playback
// URL matches an old record, the new record adopts the old identifier before
// any policy is applied.
//
// The returned slice preserves scrape order for replace policies and sorted
// identifier order for merges; remaining identifier collisions (duplicate
// titles within one scrape) are resolved by the persistence layer.
func Reconcile(policy Policy, old Set, fresh []Record) []Record {
	oldByURL := make(map[string]string, len(old))
	for id, record := range old {
		if url := record.PlaybackURL(); url != "" {
			oldByURL[url] = id
		}
	}

	resolved := make([]Record, len(fresh))
	for i, record := range fresh {
		if id, ok := oldByURL[record.PlaybackURL()]; ok && record.PlaybackURL() != "" {
			record.Identifier = id
		}
		resolved[i] = record
	}

	switch policy.Mode {
	case PolicyMerge:
		return merge(policy, old, resolved)
	case PolicyReplaceAll, PolicyReplaceNewOnly:
		return resolved
	default:
		// Unconfigured policies are mapped to replace_new_only at load time;
		// reaching here means a missed validation, behave like the default.
		slog.Warn("Unknown overwrite policy, treating as replace_new_only", "mode", string(policy.Mode))
		return resolved
	}
}

func merge(policy Policy, old Set, fresh []Record) []Record {
	freshByID := make(map[string]Record, len(fresh))
	for _, record := range fresh {
		if _, dup := freshByID[record.Identifier]; dup {
			slog.Warn("Duplicate identifier within one scrape, keeping first", "identifier", record.Identifier)
			continue
		}
		freshByID[record.Identifier] = record
	}

	final := make(Set, len(old))

	for id, oldRecord := range old {
		newRecord, present := freshByID[id]
		if !present {
			if len(policy.OverwriteFields) > 0 {
				// The video disappeared from the source; keep the stored record.
				slog.Warn("Record missing from fresh scrape, keeping stored version", "identifier", id)
			}
			final[id] = oldRecord
			continue
		}
		if len(policy.OverwriteFields) == 0 {
			final[id] = oldRecord
			continue
		}
		merged := oldRecord
		for _, field := range policy.OverwriteFields {
			if err := overwriteField(&merged, newRecord, field); err != nil {
				slog.Warn("Skipping overwrite field", "field", field, "error", err)
			}
		}
		merged.Identifier = id
		final[id] = merged
	}

	for id, record := range freshByID {
		if _, present := old[id]; present {
			continue
		}
		if policy.AddNewFiles {
			final[id] = record
		} else {
			slog.Warn("Dropping record absent from stored set (add_new_files disabled)", "identifier", id)
		}
	}

	result := make([]Record, 0, len(final))
	for _, id := range final.SortedIdentifiers() {
		result = append(result, final[id])
	}
	return result
}

func (m PolicyMode) String() string {
	return string(m)
}

// ParsePolicyMode validates a configured policy mode name.
func ParsePolicyMode(s string) (PolicyMode, error) {
	switch PolicyMode(s) {
	case PolicyReplaceAll, PolicyMerge, PolicyReplaceNewOnly:
		return PolicyMode(s), nil
	default:
		return "", fmt.Errorf("unknown overwrite policy: %q", s)
	}
}
