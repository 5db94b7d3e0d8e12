package loss

import (
	"fmt"
	"math"

	"github.com/Serene-Guo/difacto/data"
	"github.com/Serene-Guo/difacto/sarray"
	"github.com/Serene-Guo/difacto/spmv"
)

func init() {
	Register("logit_delta", func(cfg Config) (Loss, error) { return NewLogitLossDelta(cfg) })
}

// LogitLossDelta is the logistic loss specialized for block coordinate
// descent:
//
//	l(x, y, w) = log(1 + exp(-y <w, x>))
//
// It is fed X' (the transpose of X, in compressed-row form) and a delta
// weight each call, and can produce diagonal second-order terms next to the
// gradient.
type LogitLossDelta struct {
	cfg Config
}

// NewLogitLossDelta builds an engine with the given configuration.
func NewLogitLossDelta(cfg Config) (*LogitLossDelta, error) {
	return &LogitLossDelta{cfg: cfg}, nil
}

// Predict updates the prediction in place:
//
//	pred += X * delta_w
//
// param[0] is the float64 delta weight; param[1], optional, is an int
// position array with one entry per block row, mapping that feature row to
// its delta-weight slot (negative means the feature did not change).
func (l *LogitLossDelta) Predict(block data.RowBlock, param []sarray.SArray[byte], pred sarray.SArray[float64]) error {
	if len(param) < 1 || len(param) > 2 {
		return fmt.Errorf("%w: Predict takes 1 or 2 parameters, got %d", ErrBadParam, len(param))
	}
	deltaW, err := sarray.Reinterpret[float64](param[0])
	if err != nil {
		return err
	}
	var wPos []int
	if len(param) == 2 {
		pos, err := sarray.Reinterpret[int](param[1])
		if err != nil {
			return err
		}
		wPos = pos.Data()
	}
	return spmv.TransTimes(block, deltaW.Data(), pred.Data(), l.cfg.threads(), wPos, nil)
}

// CalcGrad computes, with tau = 1/(1+exp(-y .* pred)),
//
//	first order:            grad = - X' * ((1-tau) .* y)
//	exact diagonal second:  (X.*X)' * (tau .* (1-tau))
//	upper-bound diagonal:   (X.*X)' * (tau .* (1-tau) .* exp(m)),
//	                        m_i = sum_j |x_ij| |delta_j|
//
// param[0] is the float64 prediction, one entry per sample. param[1],
// optional, is an int position array with one entry per block row selecting
// where that coordinate's gradient lands in grad (negative skips it).
// param[2], required by the upper-bound branch only, is the float64 pending
// delta, dense over the block's rows.
//
// When a second-order term is requested its value lands one slot after the
// corresponding gradient value, so gradient positions are mandatory and must
// leave that slot free. The committed first-order gradient is best-effort: it
// stays in grad even if a later second-order step fails.
func (l *LogitLossDelta) CalcGrad(block data.RowBlock, param []sarray.SArray[byte], grad sarray.SArray[float64]) error {
	if len(param) < 1 || len(param) > 3 {
		return fmt.Errorf("%w: CalcGrad takes 1 to 3 parameters, got %d", ErrBadParam, len(param))
	}
	pred, err := sarray.Reinterpret[float64](param[0])
	if err != nil {
		return err
	}
	n := pred.Size()
	if block.Label == nil {
		return ErrNoLabel
	}
	if len(block.Label) < n {
		return fmt.Errorf("%w: %d labels for %d samples", ErrNoLabel, len(block.Label), n)
	}
	var gradPos []int
	if len(param) >= 2 {
		pos, err := sarray.Reinterpret[int](param[1])
		if err != nil {
			return err
		}
		gradPos = pos.Data()
	}
	secondOrder := l.cfg.ComputeDiagHessian || l.cfg.ComputeUpperDiagHessian
	var delta []float64
	if secondOrder && !l.cfg.ComputeDiagHessian {
		if len(param) != 3 {
			return fmt.Errorf("%w: upper-bound curvature needs the delta parameter", ErrBadParam)
		}
		d, err := sarray.Reinterpret[float64](param[2])
		if err != nil {
			return err
		}
		delta = d.Data()
		if len(delta) < block.Rows {
			return fmt.Errorf("%w: delta holds %d of %d rows", ErrBadParam, len(delta), block.Rows)
		}
	}
	if secondOrder && len(gradPos) == 0 {
		return fmt.Errorf("%w: second-order output needs gradient positions", ErrBadParam)
	}

	// p = -y ./ (1 + exp(y .* pred)), the per-sample first-derivative
	// coefficient.
	var p sarray.SArray[float64]
	p.CopyFrom(pred)
	pd := p.Data()
	label := block.Label
	err = spmv.ParallelFor(spmv.Range{Begin: 0, End: n}, l.cfg.threads(), func(seg spmv.Range) error {
		for i := seg.Begin; i < seg.End; i++ {
			y := labelSign(label[i])
			pd[i] = -y * (1 - sigmoid(y*pd[i]))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := spmv.Times(block, pd, grad.Data(), l.cfg.threads(), nil, gradPos); err != nil {
		return err
	}
	if !secondOrder {
		return nil
	}

	// Second-order values go one slot after their gradient value.
	hPos := make([]int, len(gradPos))
	for i, pos := range gradPos {
		hPos[i] = pos
		if pos >= 0 {
			hPos[i] = pos + 1
		}
	}

	// p = tau .* (1 - tau), recovered from the step-1 coefficients.
	err = spmv.ParallelFor(spmv.Range{Begin: 0, End: n}, l.cfg.threads(), func(seg spmv.Range) error {
		for i := seg.Begin; i < seg.End; i++ {
			y := labelSign(label[i])
			tau := -y * pd[i]
			pd[i] = tau * (1 - tau)
		}
		return nil
	})
	if err != nil {
		return err
	}

	squared := block.Squared()
	if l.cfg.ComputeDiagHessian {
		return spmv.Times(squared, pd, grad.Data(), l.cfg.threads(), nil, hPos)
	}

	// Upper bound: the logistic curvature h(z) satisfies h(z+d) <= h(z)*e^|d|,
	// and m_i bounds every logit shift reachable under the pending delta.
	absDelta := make([]float64, block.Rows)
	for i := 0; i < block.Rows; i++ {
		absDelta[i] = math.Abs(delta[i])
	}
	m := make([]float64, n)
	if err := spmv.TransTimes(block.Abs(), absDelta, m, l.cfg.threads(), nil, nil); err != nil {
		return err
	}
	err = spmv.ParallelFor(spmv.Range{Begin: 0, End: n}, l.cfg.threads(), func(seg spmv.Range) error {
		for i := seg.Begin; i < seg.End; i++ {
			pd[i] *= math.Exp(m[i])
		}
		return nil
	})
	if err != nil {
		return err
	}
	return spmv.Times(squared, pd, grad.Data(), l.cfg.threads(), nil, hPos)
}
