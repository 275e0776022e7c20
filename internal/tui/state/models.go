package state

// Phase is where the edit form is in its open cycle.
type Phase int

const (
	Closed Phase = iota
	FetchingPost
	FetchFailed
	Ready
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case FetchingPost:
		return "fetching"
	case FetchFailed:
		return "fetch-failed"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Field names an editable input. NoField means nothing is focused.
type Field int

const (
	NoField Field = iota
	TitleField
	ImageURLField
	ContentField
	TagsField
)

// Fields lists the inputs in tab order.
var Fields = []Field{TitleField, ImageURLField, ContentField, TagsField}

func (f Field) String() string {
	switch f {
	case TitleField:
		return "title"
	case ImageURLField:
		return "imageUrl"
	case ContentField:
		return "content"
	case TagsField:
		return "tags"
	default:
		return ""
	}
}

// FormState is everything the edit form remembers for one open cycle.
type FormState struct {
	Phase  Phase
	PostID string

	// Session increases on every Open and survives Close, so results from an
	// earlier cycle can be told apart.
	Session uint64

	Title    string
	Content  string
	Tags     string // raw comma-separated text
	ImageURL string

	// OriginalContent is Content as fetched, for the change preview.
	OriginalContent string

	Loading      bool
	FetchingPost bool
	Error        string
	FocusedField Field
}

func (s FormState) IsOpen() bool { return s.Phase != Closed }

// CanSubmit is false while either request is outstanding or the form is not shown.
func (s FormState) CanSubmit() bool {
	return s.Phase == Ready && !s.Loading && !s.FetchingPost
}

// Value returns the text of f.
func (s FormState) Value(f Field) string {
	switch f {
	case TitleField:
		return s.Title
	case ImageURLField:
		return s.ImageURL
	case ContentField:
		return s.Content
	case TagsField:
		return s.Tags
	}
	return ""
}
