// Package scoring derives week scores, their severity and the glyphs used to render them.
package scoring

import (
	"math"
	"strings"
)

// Choice weights.
const (
	FullWeight = 1.0
	HalfWeight = 0.5
)

// Bar geometry: one block glyph per blockSize units, a circle for a
// remainder of at least halfBlock.
const (
	blockSize = 10
	halfBlock = 5
)

// Severity is the three-level bucket of a score.
type Severity int

// Severity levels, ordered.
const (
	Normal Severity = iota
	Warning
	Critical
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Block returns the square glyph for the severity.
func (s Severity) Block() string {
	switch s {
	case Warning:
		return "🟧"
	case Critical:
		return "🟥"
	default:
		return "🟩"
	}
}

// Circle returns the round glyph for the severity.
func (s Severity) Circle() string {
	switch s {
	case Warning:
		return "🟠"
	case Critical:
		return "🔴"
	default:
		return "🟢"
	}
}

// Thresholds are inclusive upper bounds of the Normal and Warning buckets.
type Thresholds struct {
	NormalMax  float64
	WarningMax float64
}

// Default thresholds apply to Bounceland weeks.
var Default = Thresholds{NormalMax: 30, WarningMax: 50}

// Meal thresholds apply to meal poll days.
var Meal = Thresholds{NormalMax: 25, WarningMax: 50}

// Bucket classifies v: at most NormalMax is Normal, at most WarningMax is
// Warning, anything above is Critical.
func (t Thresholds) Bucket(v float64) Severity {
	switch {
	case v <= t.NormalMax:
		return Normal
	case v <= t.WarningMax:
		return Warning
	default:
		return Critical
	}
}

// Bucket classifies v with the Default thresholds.
func Bucket(v float64) Severity {
	return Default.Bucket(v)
}

// WeekScore is full*1.0 + half*0.5.
func WeekScore(full, half int) float64 {
	return float64(full)*FullWeight + float64(half)*HalfWeight
}

// VisualBar renders count as count/10 blocks and, when count%10 >= 5, one
// trailing circle. Each glyph is colored by the bucket of the running total
// up to and including it.
func VisualBar(count int) string {
	if count <= 0 {
		return ""
	}
	var b strings.Builder
	blocks := count / blockSize
	for i := 1; i <= blocks; i++ {
		b.WriteString(Bucket(float64(i * blockSize)).Block())
	}
	if count%blockSize >= halfBlock {
		b.WriteString(Bucket(float64(blocks*blockSize + halfBlock)).Circle())
	}
	return b.String()
}

// Indicator returns the circle glyph of the score's bucket.
func Indicator(score float64) string {
	return Bucket(score).Circle()
}

// BarLength rounds a score to the bar length, half to even.
func BarLength(score float64) int {
	return int(math.RoundToEven(score))
}
