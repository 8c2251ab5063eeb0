package synth

import "math"

// The functions in this file are the emulation curves of the synth. They are
// pure and pinned by tests; changing any constant changes the sound of every
// preset.

const (
	ReferenceKey = 60 // key scaling breakpoint (middle C)

	envelopeSlowest   = 41.0 // seconds to settle at rate 0
	envelopeEpsilon   = 1e-3 // settle threshold of the envelope
	envelopeMinFactor = 0.001
	envelopeMaxFactor = 0.3

	lfoMinHz       = 0.062
	lfoMaxHz       = 20.0
	lfoMaxDelay    = 5.0 // seconds at delay 99
	lfoPitchSemis  = 0.5 // pitch deviation at full depth and full mod wheel
	lfoAmpFraction = 0.5

	limiterThreshold = 0.7
	limiterKnee      = 0.2
	limiterCeiling   = 0.85

	headroom = 0.8

	glideSnapHz              = 0.1
	glideMaxSemitonesPerSec  = 2400.0
	fadeInSeconds            = 0.005
	fadeOutSeconds           = 0.002
	rateSmoothingSeconds     = 0.002
	instantAttackRate        = 90
	minOperatorFrequency     = 0.1
	maxOperatorFrequency     = 20000.0
	maxNote                  = 127
	feedbackScale            = math.Pi / 7
	keyScaleRateSpan         = 24
	keyScaleLevelSpanSemis   = 48
	velocitySensitivityRange = 7
)

var noteFrequencies = func() (ret [maxNote + 1]float64) {
	for i := range ret {
		ret[i] = 440 * math.Pow(2, float64(i-69)/12)
	}
	return
}()

// NoteFrequency returns the equal tempered frequency of a MIDI note, A4 = 440
// Hz. Notes outside 0-127 are clamped.
func NoteFrequency(note int) float64 {
	return noteFrequencies[min(max(note, 0), maxNote)]
}

// CentsRatio converts a pitch offset in cents to a frequency ratio.
func CentsRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}

// SemitoneRatio converts a pitch offset in semitones to a frequency ratio.
func SemitoneRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

// EnvelopeRate converts a DX7 rate (0-99) to a per-sample rate. Each step of
// 99/12 halves the time the envelope needs to settle, from 41 s at rate 0 down
// to about 10 ms at rate 99. Rate 0 returns 0.
func EnvelopeRate(rate, sampleRate float64) float64 {
	if rate <= 0 || sampleRate <= 0 {
		return 0
	}
	settle := envelopeSlowest * math.Pow(2, -rate*12/99) * sampleRate
	return 2 * (1 - math.Exp(math.Log(envelopeEpsilon)/settle))
}

// ApproachFactor is the fraction of the remaining distance to the target
// level that the envelope covers in one sample.
func ApproachFactor(rate float64) float64 {
	return min(max(rate*0.5, envelopeMinFactor), envelopeMaxFactor)
}

// KeyScaleRateFactor speeds up envelopes above the reference key and slows
// them down below it. keyScaleRate is 0-7.
func KeyScaleRateFactor(note int, keyScaleRate float64) float64 {
	dist := float64(note - ReferenceKey)
	amount := math.Abs(dist) * keyScaleRate / 7 / keyScaleRateSpan
	if dist >= 0 {
		return 1 + amount
	}
	return 1 / (1 + amount)
}

// KeyScaleLevelFactor attenuates the operator the further the note is from
// the reference key. keyScaleLevel is 0-99.
func KeyScaleLevelFactor(note int, keyScaleLevel float64) float64 {
	f := 1 - math.Abs(float64(note-ReferenceKey))*keyScaleLevel/99/keyScaleLevelSpanSemis
	return min(max(f, 0), 1)
}

// VelocityFactor scales the operator output by velocity (0-1) when the
// sensitivity (0-7) is above zero.
func VelocityFactor(velocity, sensitivity float64) float64 {
	if sensitivity <= 0 {
		return 1
	}
	return 1 - (1-velocity)*sensitivity/velocitySensitivityRange
}

// FeedbackAmount maps feedback 0-7 to a phase deviation of 0-π radians per
// unit of previous output.
func FeedbackAmount(feedback float64) float64 {
	return feedback * feedbackScale
}

// LFORateHz maps LFO rate 0-99 exponentially onto 0.062-20 Hz.
func LFORateHz(rate float64) float64 {
	rate = min(max(rate, 0), 99)
	return lfoMinHz * math.Pow(lfoMaxHz/lfoMinHz, rate/99)
}

// LFODelaySeconds maps LFO delay 0-99 linearly onto 0-5 s.
func LFODelaySeconds(delay float64) float64 {
	return min(max(delay, 0), 99) / 99 * lfoMaxDelay
}

// PortamentoCoefficient is the per-sample fraction of the remaining frequency
// distance covered by a glide with the given time (0-99). A time of 0 jumps
// at once.
func PortamentoCoefficient(time, sampleRate float64) float64 {
	if time <= 0 {
		return 1
	}
	return 1 / (time*10 + 1) / (sampleRate / 1000)
}

// GlideStepLimit is the largest relative frequency change a glide may make
// in one sample.
func GlideStepLimit(sampleRate float64) float64 {
	return SemitoneRatio(glideMaxSemitonesPerSec/sampleRate) - 1
}

// VoiceScale is the equal power mix gain for n simultaneously sounding
// voices.
func VoiceScale(n int) float64 {
	if n <= 1 {
		return 1
	}
	return 1 / math.Sqrt(float64(n))
}

// SoftLimit passes signals below 0.7 unchanged, compresses above it with a
// knee of width 0.2 and never exceeds 0.85 in magnitude.
func SoftLimit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	a := math.Abs(x)
	if a <= limiterThreshold {
		return x
	}
	excess := a - limiterThreshold
	y := limiterThreshold + excess/(1+excess/limiterKnee)
	return math.Copysign(min(y, limiterCeiling), x)
}

// smoothingCoefficient is the per-sample coefficient of a one pole smoother
// with the given time constant.
func smoothingCoefficient(seconds, sampleRate float64) float64 {
	return 1 - math.Exp(-1/(seconds*sampleRate))
}
