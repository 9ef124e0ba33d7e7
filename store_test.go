package opts

import (
	"reflect"
	"testing"
)

func TestSetStringOverwritesAndHas(t *testing.T) {
	store := New()
	store.SetString("name", "first").SetString("name", "second")

	if !store.Has("name") {
		t.Fatalf("expected key to exist after write")
	}
	if got := store.Value("name"); got != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", store.Len())
	}
}

func TestHasIsIndependentOfReadType(t *testing.T) {
	store := New()
	store.SetString("port", "not-a-number")

	if got := Get(store, "port", -1); got != -1 {
		t.Fatalf("expected default for undecodable int, got %d", got)
	}
	if !store.Has("port") {
		t.Fatalf("expected Has to report the entry regardless of decode failures")
	}
}

func TestEmptyKeyIsIgnored(t *testing.T) {
	store := New()
	store.SetString("", "value")
	if err := Set(store, "", 10); err != nil {
		t.Fatalf("expected empty key write to be a no-op, got %v", err)
	}

	if store.Len() != 0 {
		t.Fatalf("expected no entries, got %d", store.Len())
	}
	if store.Has("") {
		t.Fatalf("expected empty key to be absent")
	}
	if _, ok := store.Raw(""); ok {
		t.Fatalf("expected empty key lookup to miss")
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	if store.Has("a") || store.Len() != 0 || store.Value("a") != "" {
		t.Fatalf("expected nil store to behave as empty")
	}
	if got := Get(store, "a", 3); got != 3 {
		t.Fatalf("expected default from nil store, got %d", got)
	}
	if store.SetString("a", "b") != nil {
		t.Fatalf("expected nil store to stay nil")
	}
}

func TestNullIsDistinctFromAbsent(t *testing.T) {
	store := New()
	store.SetRaw("token", nil)

	raw, ok := store.Raw("token")
	if !ok || raw != nil {
		t.Fatalf("expected explicit null, got %v %v", raw, ok)
	}
	if !store.Has("token") {
		t.Fatalf("expected null entry to exist")
	}
	if _, ok := store.Raw("missing"); ok {
		t.Fatalf("expected missing key to be absent")
	}
	if got := Get(store, "token", "fallback"); got != "fallback" {
		t.Fatalf("expected default for null entry, got %q", got)
	}
}

func TestValueOfAbsentAndEmptyAreBothEmpty(t *testing.T) {
	store := New()
	store.SetString("blank", "")

	if store.Value("blank") != "" || store.Value("missing") != "" {
		t.Fatalf("expected empty strings for blank and missing keys")
	}
	if got := Get(store, "blank", 9); got != 9 {
		t.Fatalf("expected default for empty value, got %d", got)
	}
}

func TestCasePolicy(t *testing.T) {
	insensitive := New()
	if err := Set(insensitive, "Foo", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := Get(insensitive, "foo", -1); got != 1 {
		t.Fatalf("case-insensitive store: expected 1, got %d", got)
	}

	sensitive := New(WithCaseInsensitive(false))
	if err := Set(sensitive, "Foo", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := Get(sensitive, "foo", -1); got != -1 {
		t.Fatalf("case-sensitive store: expected -1, got %d", got)
	}
	if sensitive.CaseInsensitive() {
		t.Fatalf("expected case-sensitive policy")
	}
}

func TestCaseFoldingHandlesUnicode(t *testing.T) {
	store := New()
	store.SetString("Straße", "street")

	if got := store.Value("STRASSE"); got != "street" {
		t.Fatalf("expected full case folding to match, got %q", got)
	}
}

func TestKeysKeepFirstSpellingAndOrder(t *testing.T) {
	store := New()
	store.SetString("Beta", "1").SetString("alpha", "2").SetString("BETA", "3")

	want := []string{"Beta", "alpha"}
	if got := store.Keys(); !reflect.DeepEqual(want, got) {
		t.Fatalf("keys mismatch: want %v, got %v", want, got)
	}
	if got := store.Value("beta"); got != "3" {
		t.Fatalf("expected latest value, got %q", got)
	}
}

func TestEntriesAreCopies(t *testing.T) {
	store := New()
	store.SetString("a", "1")

	entries := store.Entries()
	*entries[0].Value = "mutated"

	if got := store.Value("a"); got != "1" {
		t.Fatalf("expected entries to be detached, got %q", got)
	}
}

func TestCloneWithCasePolicyRebuilds(t *testing.T) {
	source := New(WithCaseInsensitive(false))
	source.SetString("Key", "upper").SetString("key", "lower").SetString("other", "x")
	source.SetAlias("other", "Alt")

	folded := CloneWithCasePolicy(source, true)
	if !folded.CaseInsensitive() {
		t.Fatalf("expected case-insensitive clone")
	}
	if folded.Len() != 2 {
		t.Fatalf("expected colliding keys to fold together, got %d entries", folded.Len())
	}
	if got := folded.Value("KEY"); got != "lower" {
		t.Fatalf("expected later write to win on fold, got %q", got)
	}
	if got := folded.Value("alt"); got != "x" {
		t.Fatalf("expected alias to survive rebuild, got %q", got)
	}

	if source.Len() != 3 || source.CaseInsensitive() {
		t.Fatalf("expected source store to be untouched")
	}

	back := CloneWithCasePolicy(folded, false)
	if back.Has("KEY") || !back.Has("Key") {
		t.Fatalf("expected first spelling to be kept in case-sensitive clone")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	store := New()
	store.SetString("a", "1")

	clone := store.Clone()
	clone.SetString("a", "2")

	if store.Value("a") != "1" || clone.Value("a") != "2" {
		t.Fatalf("expected clone writes to stay local")
	}
	if CloneWithCasePolicy(nil, false).CaseInsensitive() {
		t.Fatalf("expected nil source to produce an empty store with the requested policy")
	}
}

func TestAliasFallback(t *testing.T) {
	store := New()
	store.SetString("real", "v")
	store.SetAlias("real", "r1", "r2", "")

	if got := Get(store, "r1", "default"); got != "v" {
		t.Fatalf("expected alias lookup, got %q", got)
	}
	if got := store.Value("R2"); got != "v" {
		t.Fatalf("expected alias lookup to follow the key policy, got %q", got)
	}
	if store.Has("r1") {
		t.Fatalf("expected Has to ignore aliases")
	}
	if got := len(store.Aliases()); got != 2 {
		t.Fatalf("expected empty alias to be skipped, got %d aliases", got)
	}
}

func TestAliasOnlyConsultedOnMiss(t *testing.T) {
	store := New()
	store.SetString("real", "target").SetString("shadow", "direct")
	store.SetAlias("real", "shadow")

	if got := store.Value("shadow"); got != "direct" {
		t.Fatalf("expected direct entry to win over alias, got %q", got)
	}
}

func TestAliasToMissingKeyResolvesToDefault(t *testing.T) {
	store := New()
	store.SetAlias("absent", "a")

	if _, ok := store.Raw("a"); ok {
		t.Fatalf("expected dangling alias to miss")
	}
	if got := Get(store, "a", 5); got != 5 {
		t.Fatalf("expected default, got %d", got)
	}
}

func TestAliasReassignment(t *testing.T) {
	store := New()
	store.SetString("one", "1").SetString("two", "2")
	store.SetAlias("one", "n")
	store.SetAlias("two", "N")

	if got := store.Value("n"); got != "2" {
		t.Fatalf("expected later alias registration to win, got %q", got)
	}
	aliases := store.Aliases()
	if len(aliases) != 1 || aliases["N"] != "two" {
		t.Fatalf("expected a single alias pointing at two, got %v", aliases)
	}
}
