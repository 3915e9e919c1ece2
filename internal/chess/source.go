package chess

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"

	"github.com/park285/cheese-review/internal/review"
)

var (
	ErrEmptyGame     = errors.New("no moves in input")
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidPGN    = errors.New("invalid pgn")
	ErrMultipleGames = errors.New("input holds more than one game")
	ErrCustomStart   = errors.New("games from a custom start position are not supported")
)

var (
	uciPattern     = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)
	moveNumPattern = regexp.MustCompile(`^\d+\.+`)
	pgnStart       = regexp.MustCompile(`^(\[|\d+\.)`)
)

var castling = strings.NewReplacer("0-0-0", "O-O-O", "0-0", "O-O")

var resultTokens = map[string]bool{"1-0": true, "0-1": true, "1/2-1/2": true, "*": true}

// Source replays PGN or a plain move list (SAN or UCI) from the standard start position
// and produces moves with one FEN snapshot per position.
type Source struct {
	book *opening.BookECO
}

func NewSource() *Source {
	return &Source{book: opening.NewBookECO()}
}

// Parse implements review.GameSource. Input starting with a tag pair or a move number is
// read as PGN; anything else is a bare move list.
func (s *Source) Parse(raw string) (review.Game, error) {
	raw = strings.TrimSpace(raw)
	var (
		game *nchess.Game
		tags map[string]string
		err  error
	)
	if pgnStart.MatchString(raw) {
		game, tags, err = readPGN(raw)
	} else {
		game, err = replayMoveList(raw)
		tags = make(map[string]string)
	}
	if err != nil {
		return review.Game{}, err
	}
	return s.export(game, tags), nil
}

func (s *Source) export(game *nchess.Game, tags map[string]string) review.Game {
	out := review.Game{Tags: tags}
	positions := game.Positions()
	moves := game.Moves()
	out.Snapshots = make([]review.Snapshot, 0, len(positions))
	for _, pos := range positions {
		out.Snapshots = append(out.Snapshots, review.Snapshot(pos.String()))
	}
	out.Moves = make([]review.Move, 0, len(moves))
	uci := nchess.UCINotation{}
	san := nchess.AlgebraicNotation{}
	for i, mv := range moves {
		text := uci.Encode(positions[i], mv)
		out.Moves = append(out.Moves, review.Move{
			Ply:       i,
			Side:      review.SideOfPly(i),
			From:      review.Square(text[:2]),
			To:        review.Square(text[2:4]),
			Promotion: text[4:],
			Notation:  text,
			SAN:       san.Encode(positions[i], mv),
		})
	}
	if _, ok := out.Tags["Result"]; !ok && game.Outcome() != nchess.NoOutcome {
		out.Tags["Result"] = string(game.Outcome())
	}
	if s.book != nil {
		if eco := s.book.Find(moves); eco != nil {
			out.Opening = review.Opening{Code: eco.Code(), Title: eco.Title()}
		}
	}
	return out
}

// readPGN parses exactly one game with the rules library's scanner and parser.
func readPGN(raw string) (*nchess.Game, map[string]string, error) {
	scanner := nchess.NewScanner(strings.NewReader(stripLineComments(raw)))
	scanned, err := scanner.ScanGame()
	if err != nil {
		return nil, nil, &review.ParseError{Err: fmt.Errorf("%w: %w", ErrInvalidPGN, err)}
	}
	tokens, err := nchess.TokenizeGame(scanned)
	if err != nil {
		return nil, nil, &review.ParseError{Err: fmt.Errorf("%w: %w", ErrInvalidPGN, err)}
	}
	game, err := nchess.NewParser(tokens).Parse()
	if err != nil {
		return nil, nil, &review.ParseError{Err: fmt.Errorf("%w: %w", ErrIllegalMove, err)}
	}
	if scanner.HasNext() {
		return nil, nil, &review.ParseError{Err: ErrMultipleGames}
	}

	tags := make(map[string]string)
	for _, tok := range tokens {
		if tok.Type == nchess.TagKey {
			tags[tok.Value] = game.GetTagPair(tok.Value)
		}
	}
	if _, ok := tags["FEN"]; ok {
		return nil, nil, &review.ParseError{Err: ErrCustomStart}
	}
	if len(game.Moves()) == 0 {
		return nil, nil, &review.ParseError{Err: ErrEmptyGame}
	}
	return game, tags, nil
}

// replayMoveList pushes whitespace or comma separated SAN/UCI moves onto a fresh game.
func replayMoveList(raw string) (*nchess.Game, error) {
	tokens := moveTokens(raw)
	if len(tokens) == 0 {
		return nil, &review.ParseError{Err: ErrEmptyGame}
	}
	game := nchess.NewGame()
	for i, tok := range tokens {
		if err := pushToken(game, tok); err != nil {
			return nil, &review.ParseError{Ply: i, Token: tok, Err: err}
		}
	}
	return game, nil
}

// ValidateFEN reports whether fen is a position the rules library accepts.
func ValidateFEN(fen string) error {
	if _, err := nchess.FEN(strings.TrimSpace(fen)); err != nil {
		return fmt.Errorf("invalid fen: %w", err)
	}
	return nil
}

// SideToMove reads the active colour field of a FEN; anything but "b" is White.
func SideToMove(fen string) review.Side {
	fields := strings.Fields(fen)
	if len(fields) > 1 && fields[1] == "b" {
		return review.Black
	}
	return review.White
}

func pushToken(game *nchess.Game, tok string) error {
	if uciPattern.MatchString(tok) {
		mv, err := nchess.UCINotation{}.Decode(game.Position(), tok)
		if err == nil {
			if err := game.Move(mv, nil); err != nil {
				return fmt.Errorf("%w: %s", ErrIllegalMove, tok)
			}
			return nil
		}
	}
	if err := game.PushNotationMove(tok, nchess.AlgebraicNotation{}, nil); err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, tok)
	}
	return nil
}

// stripLineComments drops ";" comments and "%" escape lines, which the rules library's
// lexer does not recognise. Brace comments and tag values are left alone.
func stripLineComments(raw string) string {
	var out strings.Builder
	inBrace, inQuote, escaped := false, false, false
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if !inBrace && strings.HasPrefix(line, "%") {
			continue
		}
	scan:
		for i, r := range line {
			switch {
			case inBrace:
				inBrace = r != '}'
			case escaped:
				escaped = false
			case inQuote && r == '\\':
				escaped = true
			case inQuote:
				inQuote = r != '"'
			case r == '{':
				inBrace = true
			case r == '"':
				inQuote = true
			case r == ';':
				line = line[:i]
				break scan
			}
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

// moveTokens splits a bare move list, dropping move numbers, results and annotation marks.
func moveTokens(list string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ReplaceAll(list, ",", " ")) {
		if resultTokens[tok] || strings.HasPrefix(tok, "$") {
			continue
		}
		tok = moveNumPattern.ReplaceAllString(tok, "")
		tok = strings.TrimRight(tok, "!?")
		tok = castling.Replace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}
