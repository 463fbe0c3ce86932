package app

import "time"

func clampDelay(d time.Duration) time.Duration {
	if d < MinDelay {
		return MinDelay
	}
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}

// stepDelay moves d by steps increments of DelayStep. Positive steps speed
// the animation up.
func stepDelay(d time.Duration, steps int) time.Duration {
	return clampDelay(d - time.Duration(steps)*DelayStep)
}

// SliderDelay maps a speed slider value in [10,200] to a per-tick delay,
// so the right end of the slider is fastest.
func SliderDelay(value int) time.Duration {
	return clampDelay(time.Duration(210-value) * time.Millisecond)
}
