package field

// VisibilitySeparator joins two differing visibility labels.
const VisibilitySeparator = ":"

// VisibilityHandler returns the visibility label of one attribute of a record.
type VisibilityHandler interface {
	Visibility(r Record, fieldID string, value any) string
}

// GlobalVisibility assigns the same label to every attribute.
type GlobalVisibility string

// Visibility returns the global label.
func (g GlobalVisibility) Visibility(Record, string, any) string {
	return string(g)
}

// VisibilityFunc adapts a function to VisibilityHandler.
type VisibilityFunc func(r Record, fieldID string, value any) string

// Visibility calls f.
func (f VisibilityFunc) Visibility(r Record, fieldID string, value any) string {
	return f(r, fieldID, value)
}

// NewGlobalVisibility returns a GlobalVisibility for label, or nil when label
// is empty so that records carry no visibility at all.
func NewGlobalVisibility(label string) VisibilityHandler {
	if label == "" {
		return nil
	}

	return GlobalVisibility(label)
}

// CombineVisibility merges the labels of two attributes that feed one index
// value. Identical labels are reused. Differing labels are concatenated with
// VisibilitySeparator; the result is not a boolean access expression, so
// "a" + "b:c" and "a:b" + "c" both yield "a:b:c".
func CombineVisibility(start, end string) string {
	if start == end {
		return start
	}

	return start + VisibilitySeparator + end
}

func visibilityOf(h VisibilityHandler, r Record, fieldID string, value any) string {
	if h == nil {
		return ""
	}

	return h.Visibility(r, fieldID, value)
}
