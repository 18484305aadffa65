package video

import (
	"testing"
)

func record(identifier, title, url string) Record {
	return Record{
		Title:      title,
		Identifier: identifier,
		Speakers:   []string{"TODO"},
		Recorded:   "2020-10-03",
		Videos:     []Location{{Type: "youtube", URL: url}},
	}
}

func setOf(records ...Record) Set {
	set := make(Set, len(records))
	for _, r := range records {
		set[r.Identifier] = r
	}
	return set
}

func identifiers(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.Identifier
	}
	return ids
}

func TestReconcileReplaceAll(t *testing.T) {
	old := setOf(record("stale", "Stale", "https://yt/old"))
	fresh := []Record{record("fresh", "Fresh", "https://yt/new")}

	final := Reconcile(Policy{Mode: PolicyReplaceAll}, old, fresh)

	if len(final) != 1 || final[0].Identifier != "fresh" {
		t.Errorf("Expected only the fresh record, got %v", identifiers(final))
	}
}

func TestReconcileReplaceNewOnlyIgnoresOld(t *testing.T) {
	old := setOf(record("kept-elsewhere", "Old", "https://yt/old"))
	fresh := []Record{record("one", "One", "https://yt/1"), record("two", "Two", "https://yt/2")}

	final := Reconcile(Policy{Mode: PolicyReplaceNewOnly}, old, fresh)

	if len(final) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(final))
	}
	if final[0].Identifier != "one" || final[1].Identifier != "two" {
		t.Errorf("Expected scrape order preserved, got %v", identifiers(final))
	}
}

func TestReconcileIdentityContinuity(t *testing.T) {
	// Same playback URL, edited title: the old identifier must survive, no
	// duplicate may appear.
	old := setOf(record("foo", "Old Title", "https://yt/U1"))
	fresh := []Record{record("new-title", "New Title", "https://yt/U1")}

	final := Reconcile(Policy{Mode: PolicyReplaceAll}, old, fresh)

	if len(final) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(final))
	}
	if final[0].Identifier != "foo" {
		t.Errorf("Expected adopted identifier 'foo', got '%s'", final[0].Identifier)
	}
	if final[0].Title != "New Title" {
		t.Errorf("Expected new title kept, got '%s'", final[0].Title)
	}
}

func TestReconcileMergeOverwriteFields(t *testing.T) {
	oldRecord := record("foo", "Old Title", "https://yt/U1")
	oldRecord.Duration = 100
	oldRecord.Language = "en"
	old := setOf(oldRecord)

	newRecord := record("renamed", "New Title", "https://yt/U1")
	newRecord.Duration = 999
	newRecord.Language = "es"

	policy := Policy{Mode: PolicyMerge, OverwriteFields: []string{"title"}}
	final := Reconcile(policy, old, []Record{newRecord})

	if len(final) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(final))
	}
	merged := final[0]
	if merged.Identifier != "foo" {
		t.Errorf("Expected identifier 'foo', got '%s'", merged.Identifier)
	}
	if merged.Title != "New Title" {
		t.Errorf("Expected overwritten title, got '%s'", merged.Title)
	}
	if merged.Duration != 100 || merged.Language != "en" {
		t.Errorf("Expected untouched fields from old record, got duration=%d language=%s",
			merged.Duration, merged.Language)
	}
}

func TestReconcileMergeWithoutOverwriteFields(t *testing.T) {
	old := setOf(record("foo", "Old Title", "https://yt/U1"))
	fresh := []Record{record("foo", "New Title", "https://yt/U1")}

	final := Reconcile(Policy{Mode: PolicyMerge}, old, fresh)

	if len(final) != 1 || final[0].Title != "Old Title" {
		t.Errorf("Expected old set unchanged without overwrite_fields, got %v", final)
	}
}

func TestReconcileMergeKeepsDisappearedRecords(t *testing.T) {
	old := setOf(
		record("gone", "Gone From Source", "https://yt/gone"),
		record("foo", "Old", "https://yt/U1"),
	)
	fresh := []Record{record("foo", "New", "https://yt/U1")}

	policy := Policy{Mode: PolicyMerge, OverwriteFields: []string{"title"}}
	final := Reconcile(policy, old, fresh)

	if len(final) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(final))
	}
	byID := setOf(final...)
	if byID["gone"].Title != "Gone From Source" {
		t.Errorf("Expected disappeared record retained unchanged, got %v", byID["gone"])
	}
	if byID["foo"].Title != "New" {
		t.Errorf("Expected present record merged, got %v", byID["foo"])
	}
}

func TestReconcileMergeAddNewFiles(t *testing.T) {
	old := setOf(record("foo", "Old", "https://yt/U1"))
	fresh := []Record{
		record("foo", "Old", "https://yt/U1"),
		record("brand-new", "Brand New", "https://yt/U2"),
	}

	// Disabled: the new-only record is dropped.
	final := Reconcile(Policy{Mode: PolicyMerge}, old, fresh)
	if len(final) != 1 {
		t.Errorf("Expected new-only record dropped, got %v", identifiers(final))
	}

	// Enabled: it is added verbatim.
	final = Reconcile(Policy{Mode: PolicyMerge, AddNewFiles: true}, old, fresh)
	if len(final) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(final))
	}
	byID := setOf(final...)
	if _, ok := byID["brand-new"]; !ok {
		t.Errorf("Expected 'brand-new' added, got %v", identifiers(final))
	}
}

func TestReconcileEmptyOldSetBehavesLikeReplaceNewOnly(t *testing.T) {
	fresh := []Record{record("one", "One", "https://yt/1")}

	for _, policy := range []Policy{
		{Mode: PolicyReplaceAll},
		{Mode: PolicyReplaceNewOnly},
		{Mode: PolicyMerge, AddNewFiles: true, OverwriteFields: []string{"title"}},
	} {
		final := Reconcile(policy, Set{}, fresh)
		if len(final) != 1 || final[0].Identifier != "one" {
			t.Errorf("Policy %s: expected just the fresh record, got %v", policy.Mode, identifiers(final))
		}
	}
}
