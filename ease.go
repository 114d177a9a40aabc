package sapling

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Ease selects a keyframe transition curve. The numeric codes are stable.
type Ease uint8

const (
	EaseConstant     Ease = 0  // holds the start value until the keyframe ends
	EaseLinear       Ease = 1  // straight interpolation
	EaseIn           Ease = 2  // t^strength
	EaseOut          Ease = 3  // 1 - (1-t)^strength
	EaseInOut        Ease = 4  // EaseIn then EaseOut, split at t=0.5
	EaseOutIn        Ease = 5  // EaseOut then EaseIn, split at t=0.5
	EaseElasticIn    Ease = 6  // decaying oscillation into the target
	EaseElasticOut   Ease = 7  // decaying oscillation around the target
	EaseElasticInOut Ease = 8  // ElasticIn then ElasticOut
	EaseElasticOutIn Ease = 9  // ElasticOut then ElasticIn
	EasePulse        Ease = 10 // fast rise to the target, slow return
	EaseShake        Ease = 11 // decaying sine, unbounded
	EaseCustom       Ease = 12 // curve supplied as a gween ease.TweenFunc
)

// DefaultStrength is used by the convenience keyframe helpers when the
// caller omits a strength.
const DefaultStrength = 3.0

const tau = 2 * math.Pi

var easeNames = [...]string{
	"constant", "linear", "ease_in", "ease_out", "ease_in_out", "ease_out_in",
	"elastic_in", "elastic_out", "elastic_in_out", "elastic_out_in",
	"pulse", "shake", "custom",
}

func (e Ease) String() string {
	if int(e) < len(easeNames) {
		return easeNames[e]
	}
	return "unknown"
}

// EvalTime maps normalized progress t to eased progress. t is clamped to
// [0, 1] for every kind except EaseConstant. Unknown kinds return 0.
func EvalTime(kind Ease, t, strength float64) float64 {
	if kind != EaseConstant {
		t = clamp01(t)
	}
	switch kind {
	case EaseConstant:
		if t < 1 {
			return 0
		}
		return 1
	case EaseLinear:
		return t
	case EaseIn:
		return math.Pow(t, strength)
	case EaseOut:
		return 1 - math.Pow(1-t, strength)
	case EaseInOut:
		return split(EaseIn, EaseOut, t, strength)
	case EaseOutIn:
		return split(EaseOut, EaseIn, t, strength)
	case EaseElasticIn:
		return 1 - math.Pow(2, -10*(1-t))*math.Sin(((1-t)*tau*strength-0.75)*(tau/3)) - 1
	case EaseElasticOut:
		return math.Pow(2, -10*t)*math.Sin((t*tau*strength-0.75)*(tau/3)) + 1
	case EaseElasticInOut:
		return split(EaseElasticIn, EaseElasticOut, t, strength)
	case EaseElasticOutIn:
		return split(EaseElasticOut, EaseElasticIn, t, strength)
	case EasePulse:
		if t < 0.2 {
			return EvalTime(EaseOut, t*5, strength)
		}
		return EvalTime(EaseInOut, 1-(t-0.2)*1.25, strength)
	case EaseShake:
		return math.Sin(t*tau*strength) * (1 - t)
	default:
		return 0
	}
}

// split runs first over the first half of t and second over the second half,
// each covering half of the output range.
func split(first, second Ease, t, strength float64) float64 {
	if t < 0.5 {
		return EvalTime(first, t*2, strength) * 0.5
	}
	return 0.5 + EvalTime(second, (t-0.5)*2, strength)*0.5
}

// evalCustom samples a gween curve over a unit interval.
func evalCustom(fn ease.TweenFunc, t float64) float64 {
	t = clamp01(t)
	return float64(fn(float32(t), 0, 1, 1))
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
