package reviewdto

// DefaultDepth is used when a request omits depth.
const DefaultDepth = 12

// MaxBatch bounds the positions accepted by one /analyze-batch call.
const MaxBatch = 1024

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	FEN   string `json:"fen"`
	Depth int    `json:"depth,omitempty"`
}

// BatchRequest is the body of POST /analyze-batch. The answer is a JSON array of
// AnalysisResponse in FENs order.
type BatchRequest struct {
	FENs  []string `json:"fens"`
	Depth int      `json:"depth,omitempty"`
}

// AnalysisResponse mirrors one engine verdict. Evaluation is White-relative centipawns,
// or the signed mate distance when Mate is set. A non-empty Error means the engine failed
// for this position and Evaluation is 0.
type AnalysisResponse struct {
	BestMove   *string `json:"best_move"`
	Evaluation float64 `json:"evaluation"`
	Mate       bool    `json:"mate"`
	Error      string  `json:"error,omitempty"`
}

// Move returns the best move or "" when the engine had none.
func (r AnalysisResponse) Move() string {
	if r.BestMove == nil {
		return ""
	}
	return *r.BestMove
}

// NewAnalysisResponse builds a successful response; an empty move encodes as null.
func NewAnalysisResponse(bestMove string, evaluation int, mate bool) AnalysisResponse {
	resp := AnalysisResponse{Evaluation: float64(evaluation), Mate: mate}
	if bestMove != "" {
		resp.BestMove = &bestMove
	}
	return resp
}

// FailedAnalysis is the in-band failure shape: evaluation 0, no move, error text.
func FailedAnalysis(err error) AnalysisResponse {
	return AnalysisResponse{Error: err.Error()}
}
