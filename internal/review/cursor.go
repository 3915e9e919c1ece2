package review

// View is the consistent triple (position, classification, highlighted squares) for one ply,
// plus the move and evaluation it came from. Ply -1 has no move, classification or highlight.
type View struct {
	Ply            int               `json:"ply"`
	Position       Snapshot          `json:"position"`
	Move           *Move             `json:"move,omitempty"`
	Classification *Classification   `json:"classification,omitempty"`
	Evaluation     *EvaluationSample `json:"evaluation,omitempty"`
	Highlighted    []Square          `json:"highlighted"`
}

// EvalText is the evaluation readout for the view ("0.00" at the start position).
func (v View) EvalText() string {
	if v.Evaluation == nil {
		return FormatEvaluation(0, false)
	}
	return FormatEvaluation(v.Evaluation.Evaluation, v.Evaluation.IsMate)
}

// EvalBar is the eval bar geometry for the view.
func (v View) EvalBar() EvalBar {
	if v.Evaluation == nil {
		return NewEvalBar(0, false)
	}
	return NewEvalBar(v.Evaluation.Evaluation, v.Evaluation.IsMate)
}

// Cursor is the only mutable piece of a review: which ply is shown.
// It is not safe for concurrent use; Reviewer guards its own cursor.
type Cursor struct {
	session *Session
	ply     int
}

// NewCursor starts at ply -1, the initial position.
func NewCursor(s *Session) *Cursor {
	if s == nil {
		s = emptySession()
	}
	return &Cursor{session: s, ply: -1}
}

func (c *Cursor) Ply() int { return c.ply }

func (c *Cursor) Session() *Session { return c.session }

// Navigate jumps straight to target. Targets outside [-1, N-1] leave the cursor untouched
// and return the current view with ok=false.
func (c *Cursor) Navigate(target int) (View, bool) {
	if !c.session.valid(target) {
		return c.session.ViewAt(c.ply), false
	}
	c.ply = target
	return c.session.ViewAt(target), true
}

func (c *Cursor) View() View { return c.session.ViewAt(c.ply) }

func (c *Cursor) Next() (View, bool) { return c.Navigate(c.ply + 1) }

func (c *Cursor) Prev() (View, bool) { return c.Navigate(c.ply - 1) }

func (c *Cursor) First() (View, bool) { return c.Navigate(-1) }

func (c *Cursor) Last() (View, bool) { return c.Navigate(c.session.Len() - 1) }
