// AngelaMos | 2026
// quota.go

// Package quota decides whether a user may run another generation.
package quota

const DefaultFreePrompts = 5

// Usage is the part of a user record the tracker looks at.
type Usage struct {
	PromptsUsed int
	Subscribed  bool
}

type Tracker struct {
	freePrompts int
}

func NewTracker(freePrompts int) *Tracker {
	if freePrompts <= 0 {
		freePrompts = DefaultFreePrompts
	}
	return &Tracker{freePrompts: freePrompts}
}

func (t *Tracker) Limit() int {
	return t.freePrompts
}

// CanGenerate is false exactly when the user is unsubscribed and has used
// the whole free allowance.
func (t *Tracker) CanGenerate(u Usage) bool {
	return u.Subscribed || u.PromptsUsed < t.freePrompts
}

// Remaining is clamped at zero once the allowance is used up, and is
// reported for subscribed users too.
func (t *Tracker) Remaining(u Usage) int {
	return max(0, t.freePrompts-u.PromptsUsed)
}
