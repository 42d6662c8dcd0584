package indicators

// EMA is a streaming exponential moving average.
type EMA struct {
	period      int
	multiplier  float64
	value       float64
	initialized bool
}

// NewEMA creates an EMA with the standard 2/(n+1) multiplier.
func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / (float64(period) + 1.0),
	}
}

// Update folds one value into the average and returns the new EMA.
func (e *EMA) Update(v float64) float64 {
	if !e.initialized {
		e.value = v
		e.initialized = true
		return e.value
	}
	e.value = (v-e.value)*e.multiplier + e.value
	return e.value
}

// Value returns the current EMA, 0 before the first update.
func (e *EMA) Value() float64 {
	return e.value
}

// Reset clears the accumulated state.
func (e *EMA) Reset() {
	e.value = 0
	e.initialized = false
}
