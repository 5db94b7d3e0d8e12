// Package loss implements the loss engines called on every coordinate-block
// update. An engine receives a transposed feature block and a small list of
// typed parameter buffers, and writes predictions, gradients and optional
// diagonal curvature into caller-owned buffers.
package loss

import (
	"fmt"
	"math"
	"runtime"

	"github.com/Serene-Guo/difacto/data"
	"github.com/Serene-Guo/difacto/sarray"
)

// Config controls which second-order terms an engine produces and how wide
// its parallel regions fan out. It is captured at construction and never
// changes afterwards.
type Config struct {
	// ComputeDiagHessian requests the exact diagonal of the Hessian. It wins
	// over ComputeUpperDiagHessian when both are set.
	ComputeDiagHessian bool

	// ComputeUpperDiagHessian requests a cheap analytic upper bound on the
	// diagonal Hessian instead of the exact value.
	ComputeUpperDiagHessian bool

	// NumThreads is the fan-out of every parallel region. Zero or negative
	// means one worker per CPU.
	NumThreads int
}

// DefaultConfig enables the cheap upper-bound curvature and leaves the exact
// diagonal off.
func DefaultConfig() Config {
	return Config{ComputeUpperDiagHessian: true, NumThreads: runtime.NumCPU()}
}

func (c Config) threads() int {
	if c.NumThreads <= 0 {
		return runtime.NumCPU()
	}
	return c.NumThreads
}

// Loss is the contract every loss variant satisfies. Parameters arrive as raw
// byte buffers in a fixed per-method order; each engine reinterprets them to
// the types it documents. Both methods mutate only the caller-supplied output
// buffer.
type Loss interface {
	// Predict updates pred in place from the block and the parameter list.
	Predict(block data.RowBlock, param []sarray.SArray[byte], pred sarray.SArray[float64]) error

	// CalcGrad writes first-order (and, depending on configuration,
	// second-order) terms into grad.
	CalcGrad(block data.RowBlock, param []sarray.SArray[byte], grad sarray.SArray[float64]) error
}

var registry = map[string]func(Config) (Loss, error){}

// Register makes a loss variant creatable by name. It is meant to run from
// package init functions and is not safe for concurrent use.
func Register(name string, ctor func(Config) (Loss, error)) {
	registry[name] = ctor
}

// Create instantiates a registered loss variant.
func Create(name string, cfg Config) (Loss, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoss, name)
	}
	return ctor(cfg)
}

// Logloss returns the scalar logistic objective sum_i log(1+exp(-y_i*pred_i))
// over the first len(pred) samples. The log-sum is computed sign-split so
// extreme logits stay finite.
func Logloss(label, pred []float64) float64 {
	s := 0.0
	for i := range pred {
		yz := labelSign(label[i]) * pred[i]
		if yz >= 0 {
			s += math.Log1p(math.Exp(-yz))
		} else {
			s += -yz + math.Log1p(math.Exp(yz))
		}
	}
	return s
}

// labelSign maps a stored label to its class in {+1, -1}; zero counts as
// positive.
func labelSign(label float64) float64 {
	if label < 0 {
		return -1
	}
	return 1
}

// sigmoid is the sign-split logistic transform; it never overflows and stays
// within [0, 1] for any finite logit.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
