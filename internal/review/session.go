package review

import "time"

// Session is one loaded, fully classified game. It is never mutated after NewSession
// returns; accessors hand out copies.
type Session struct {
	id              string
	moves           []Move
	snapshots       []Snapshot
	evaluations     []EvaluationSample
	classifications []Classification
	summary         Summary
	tags            map[string]string
	opening         Opening
	loadedAt        time.Time
}

// NewSession validates alignment, classifies every ply and aggregates the result.
func NewSession(id string, game Game, evaluations []EvaluationSample) (*Session, error) {
	if len(game.Snapshots) != len(game.Moves)+1 {
		return nil, &AlignmentError{What: "snapshots", Want: len(game.Moves) + 1, Got: len(game.Snapshots)}
	}
	classifications, err := ClassifyGame(game.Moves, evaluations)
	if err != nil {
		return nil, err
	}
	moves := make([]Move, len(game.Moves))
	for i, mv := range game.Moves {
		mv.Ply = i
		mv.Side = SideOfPly(i)
		moves[i] = mv
	}
	tags := make(map[string]string, len(game.Tags))
	for k, v := range game.Tags {
		tags[k] = v
	}
	return &Session{
		id:              id,
		moves:           moves,
		snapshots:       append([]Snapshot(nil), game.Snapshots...),
		evaluations:     append([]EvaluationSample(nil), evaluations...),
		classifications: classifications,
		summary:         Aggregate(classifications),
		tags:            tags,
		opening:         game.Opening,
		loadedAt:        time.Now(),
	}, nil
}

// emptySession stands in before the first load: no moves, no snapshot.
func emptySession() *Session {
	return &Session{summary: Aggregate(nil), tags: map[string]string{}}
}

func (s *Session) ID() string { return s.id }

// Len is the number of plies N.
func (s *Session) Len() int { return len(s.moves) }

func (s *Session) LoadedAt() time.Time { return s.loadedAt }

func (s *Session) Opening() Opening { return s.opening }

// Tag returns a PGN tag value such as "White" or "Result".
func (s *Session) Tag(name string) string { return s.tags[name] }

func (s *Session) Moves() []Move { return append([]Move(nil), s.moves...) }

func (s *Session) Snapshots() []Snapshot { return append([]Snapshot(nil), s.snapshots...) }

func (s *Session) Evaluations() []EvaluationSample {
	return append([]EvaluationSample(nil), s.evaluations...)
}

func (s *Session) Classifications() []Classification {
	return append([]Classification(nil), s.classifications...)
}

func (s *Session) Summary() Summary { return s.summary.clone() }

func (s *Session) Accuracy() Accuracy { return s.summary.Accuracy() }

// valid reports whether ply is a navigable index, -1 included.
func (s *Session) valid(ply int) bool {
	return ply >= -1 && ply <= len(s.moves)-1
}

// ViewAt derives everything the presentation layer shows for ply. It depends only on ply.
func (s *Session) ViewAt(ply int) View {
	v := View{Ply: ply, Highlighted: []Square{}}
	if idx := ply + 1; idx >= 0 && idx < len(s.snapshots) {
		v.Position = s.snapshots[idx]
	}
	if ply < 0 || ply >= len(s.moves) {
		return v
	}
	mv := s.moves[ply]
	cls := s.classifications[ply]
	sample := s.evaluations[ply]
	v.Move = &mv
	v.Classification = &cls
	v.Evaluation = &sample
	v.Highlighted = []Square{mv.From, mv.To}
	return v
}
