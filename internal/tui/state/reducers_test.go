package state

import "testing"

func TestOpenResetsPreviousCycle(t *testing.T) {
	s := Open(FormState{}, "1")
	s = ApplyFetched(s, "Old", "old content here", []string{"a"}, "http://img")
	s = Focus(s, ContentField)
	s = Reject(s, "boom")

	s = Open(s, "2")
	if s.Phase != FetchingPost || !s.FetchingPost {
		t.Fatalf("expected fetching phase, got %v", s.Phase)
	}
	if s.Title != "" || s.Content != "" || s.Tags != "" || s.ImageURL != "" || s.Error != "" || s.FocusedField != NoField {
		t.Fatalf("stale state leaked into new cycle: %+v", s)
	}
	if s.Session != 2 || s.PostID != "2" {
		t.Fatalf("expected session 2 for post 2, got %d/%s", s.Session, s.PostID)
	}
}

func TestOpenWithoutIDFails(t *testing.T) {
	s := Open(FormState{}, "")
	if s.Phase != FetchFailed || s.Error == "" {
		t.Fatalf("expected fetch-failed with message, got %+v", s)
	}
	if s.CanSubmit() {
		t.Fatalf("expected submit disabled")
	}
}

func TestApplyFetchedJoinsTags(t *testing.T) {
	s := ApplyFetched(Open(FormState{}, "42"), "T", "content", []string{"x", "y"}, "")
	if s.Tags != "x, y" {
		t.Fatalf("expected comma-joined tags, got %q", s.Tags)
	}
	if s.OriginalContent != "content" || !s.CanSubmit() {
		t.Fatalf("expected ready form with original content, got %+v", s)
	}
}

func TestSubmitGates(t *testing.T) {
	s := ApplyFetched(Open(FormState{}, "1"), "T", "C", nil, "")
	s = BeginSubmit(s)
	if s.CanSubmit() || !s.Loading {
		t.Fatalf("expected submit disabled while loading")
	}
	s = SubmitFailed(s, "nope")
	if !s.CanSubmit() || s.Error != "nope" || s.Title != "T" {
		t.Fatalf("expected interactive form with error and fields kept, got %+v", s)
	}
	s = BeginSubmit(s)
	if s.Error != "" {
		t.Fatalf("expected error cleared on new attempt")
	}
}

func TestSetFieldOnlyWhenReady(t *testing.T) {
	s := Open(FormState{}, "1")
	s = SetField(s, TitleField, "x")
	if s.Title != "" {
		t.Fatalf("edit applied while fetching")
	}
	s = ApplyFetched(s, "", "", nil, "")
	s = SetField(s, TagsField, "a, b")
	if s.Value(TagsField) != "a, b" {
		t.Fatalf("expected tags edit applied")
	}
}

func TestNextFieldWraps(t *testing.T) {
	s := ApplyFetched(Open(FormState{}, "1"), "", "", nil, "")
	s = NextField(s, false)
	if s.FocusedField != TitleField {
		t.Fatalf("expected title first, got %v", s.FocusedField)
	}
	s = NextField(s, true)
	if s.FocusedField != TagsField {
		t.Fatalf("expected wrap to tags, got %v", s.FocusedField)
	}
}

func TestCloseKeepsOnlySession(t *testing.T) {
	s := ApplyFetched(Open(FormState{}, "1"), "T", "C", []string{"t"}, "u")
	s = Close(s)
	if s != (FormState{Session: 1}) {
		t.Fatalf("expected wiped state, got %+v", s)
	}
	if s.IsOpen() {
		t.Fatalf("expected closed")
	}
}
