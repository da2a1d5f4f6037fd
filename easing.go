package marionette

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

// EasingLinear is the fallback easing applied when a keyframe names an
// unregistered curve or none at all.
const EasingLinear = "linear"

// easings maps curve names to gween tween functions. Populated once;
// marionette is single-threaded so a plain map is fine.
var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inQuart":      ease.InQuart,
	"outQuart":     ease.OutQuart,
	"inOutQuart":   ease.InOutQuart,
	"inQuint":      ease.InQuint,
	"outQuint":     ease.OutQuint,
	"inOutQuint":   ease.InOutQuint,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inCirc":       ease.InCirc,
	"outCirc":      ease.OutCirc,
	"inOutCirc":    ease.InOutCirc,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
	"inBounce":     ease.InBounce,
	"outBounce":    ease.OutBounce,
	"inOutBounce":  ease.InOutBounce,
}

// EasingNames returns the registered easing names, sorted, for stable UI
// enumeration.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Easing looks up a registered curve by name. Fails with ErrUnknownEasing
// for unregistered names; callers fall back to linear.
func Easing(name string) (ease.TweenFunc, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("marionette: easing %q: %w", name, ErrUnknownEasing)
	}
	return fn, nil
}

// applyEasing maps normalized time t in [0, 1] through the named curve.
// An empty or unknown name degrades to linear. Overshoot curves (back,
// elastic) may return values outside [0, 1]; that is intentional.
func applyEasing(name string, t float64) float64 {
	fn, ok := easings[name]
	if !ok {
		if name != "" {
			debugf("easing %q not registered, using linear", name)
		}
		return t
	}
	return float64(fn(float32(t), 0, 1, 1))
}
