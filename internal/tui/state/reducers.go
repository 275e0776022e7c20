package state

// Open starts a new cycle for postID. All fields from any previous cycle are
// dropped. An empty id cannot be fetched and lands in FetchFailed.
func Open(s FormState, postID string) FormState {
	next := FormState{Session: s.Session + 1, PostID: postID}
	if postID == "" {
		next.Phase = FetchFailed
		next.Error = "No post selected."
		return next
	}
	next.Phase = FetchingPost
	next.FetchingPost = true
	return next
}

// ApplyFetched fills the fields from a loaded post. tags are shown comma-joined.
func ApplyFetched(s FormState, title, content string, tags []string, imageURL string) FormState {
	s.Phase = Ready
	s.FetchingPost = false
	s.Error = ""
	s.Title = title
	s.Content = content
	s.OriginalContent = content
	s.Tags = JoinTags(tags)
	s.ImageURL = imageURL
	return s
}

// FailFetch ends the load with msg; the form stays hidden for this cycle.
func FailFetch(s FormState, msg string) FormState {
	s.Phase = FetchFailed
	s.FetchingPost = false
	s.Error = msg
	s.FocusedField = NoField
	return s
}

// SetField records an edit. Ignored unless the form is interactive.
func SetField(s FormState, f Field, v string) FormState {
	if s.Phase != Ready {
		return s
	}
	switch f {
	case TitleField:
		s.Title = v
	case ImageURLField:
		s.ImageURL = v
	case ContentField:
		s.Content = v
	case TagsField:
		s.Tags = v
	}
	return s
}

// Focus marks f as focused.
func Focus(s FormState, f Field) FormState {
	if s.Phase != Ready && s.Phase != Submitting {
		return s
	}
	s.FocusedField = f
	return s
}

// NextField moves focus forward (or backward) in tab order, wrapping around.
func NextField(s FormState, backward bool) FormState {
	idx := -1
	for i, f := range Fields {
		if f == s.FocusedField {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && backward:
		idx = len(Fields) - 1
	case idx < 0:
		idx = 0
	case backward:
		idx = (idx - 1 + len(Fields)) % len(Fields)
	default:
		idx = (idx + 1) % len(Fields)
	}
	return Focus(s, Fields[idx])
}

// Reject records a client-side validation failure. No request goes out.
func Reject(s FormState, msg string) FormState {
	s.Error = msg
	return s
}

// BeginSubmit marks the update request as in flight.
func BeginSubmit(s FormState) FormState {
	s.Phase = Submitting
	s.Loading = true
	s.Error = ""
	return s
}

// SubmitFailed returns to an interactive form with the user's edits intact.
func SubmitFailed(s FormState, msg string) FormState {
	s.Phase = Ready
	s.Loading = false
	s.Error = msg
	return s
}

// Close wipes the form. Only the session counter is kept.
func Close(s FormState) FormState {
	return FormState{Session: s.Session}
}
