package gazetteer

import "testing"

func TestFilterMatchesSubstringCaseInsensitive(t *testing.T) {
	got := Filter("che")
	if len(got) != 2 {
		t.Fatalf("Filter(\"che\") returned %d districts, want 2", len(got))
	}
	if got[0].Name != "Chengalpattu" || got[1].Name != "Chennai" {
		t.Errorf("Filter(\"che\") = %q, %q; want Chengalpattu, Chennai", got[0].Name, got[1].Name)
	}
}

func TestFilterEmptyQuery(t *testing.T) {
	if got := Filter(""); got != nil {
		t.Errorf("Filter(\"\") = %v, want nil", got)
	}
	if got := Filter("   "); got != nil {
		t.Errorf("Filter(blank) = %v, want nil", got)
	}
}

func TestFilterCapsResults(t *testing.T) {
	// "ur" matches well over eight district names.
	got := Filter("ur")
	if len(got) != MaxResults {
		t.Fatalf("Filter(\"ur\") returned %d districts, want %d", len(got), MaxResults)
	}
	// Gazetteer order: Ariyalur comes first.
	if got[0].Name != "Ariyalur" {
		t.Errorf("first match = %q, want Ariyalur", got[0].Name)
	}
}

func TestFilterNoMatch(t *testing.T) {
	if got := Filter("zzz"); len(got) != 0 {
		t.Errorf("Filter(\"zzz\") = %v, want empty", got)
	}
}
