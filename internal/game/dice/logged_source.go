package dice

import "go.uber.org/zap"

type loggedSource struct {
	src    Source
	stream string
	logger *zap.Logger
}

// NewLoggedSource wraps src so each draw is logged at debug level under the
// given stream name.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, stream string, logger *zap.Logger) Source {
	return &loggedSource{src: src, stream: stream, logger: logger}
}

func (l *loggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("random draw",
		zap.String("stream", l.stream),
		zap.Int("bound", n),
		zap.Int("value", v),
	)
	return v
}

// Roller wraps a Source and logger to provide logged dice rolling.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result at debug level.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// Source returns the underlying random source.
func (r *Roller) Source() Source { return r.src }
