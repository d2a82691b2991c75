package tensor

import "sync/atomic"

// noGradDepth counts nested NoGrad scopes across all goroutines.
// Gradient tracking is globally enabled while the counter is zero.
var noGradDepth atomic.Int32

// GradEnabled reports whether gradient tracking is currently enabled.
func GradEnabled() bool {
	return noGradDepth.Load() == 0
}

// NoGrad runs fn with gradient tracking globally suspended. The previous
// mode is restored when fn returns, including when fn panics. Scopes nest.
//
// Loading saved weights goes through NoGrad so that restoring values is
// never recorded as a differentiable operation.
func NoGrad(fn func()) {
	noGradDepth.Add(1)
	defer noGradDepth.Add(-1)
	fn()
}
