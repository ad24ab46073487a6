package game

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// DurationTolerance is how far totalDuration may drift from end-start.
const DurationTolerance = 60 * time.Second

// Duration carries totalDuration in whole seconds. Sources submit it as a
// number of seconds or as an "HH:MM:SS"/"MM:SS" string; a string that has not
// been normalized yet is kept in Raw.
type Duration struct {
	Seconds *int
	Raw     string
}

func DurationOf(seconds int) Duration {
	return Duration{Seconds: &seconds}
}

func (d Duration) IsZero() bool {
	return d.Seconds == nil && strings.TrimSpace(d.Raw) == ""
}

func (d Duration) MarshalJSON() ([]byte, error) {
	if d.Seconds != nil {
		return []byte(strconv.Itoa(*d.Seconds)), nil
	}
	if d.Raw != "" {
		return sonic.Marshal(d.Raw)
	}
	return []byte("null"), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Duration{}
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := sonic.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode totalDuration: %w", err)
		}
		*d = Duration{Raw: raw}
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*d = Duration{Raw: string(data)}
		return nil
	}
	seconds := int(math.Round(f))
	*d = Duration{Seconds: &seconds}
	return nil
}

// ParseDurationToSeconds accepts "HH:MM:SS", "MM:SS" or a plain number of seconds.
func ParseDurationToSeconds(value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("empty duration")
	}

	parts := strings.Split(v, ":")
	if len(parts) == 1 {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return n, nil
	}
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		values[i] = n
	}

	if len(values) == 2 {
		return values[0]*60 + values[1], nil
	}
	return values[0]*3600 + values[1]*60 + values[2], nil
}

// FormatSecondsToHHMMSS renders seconds as zero-padded HH:MM:SS; hours may exceed 24.
func FormatSecondsToHHMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// CompleteDuration normalizes totalDuration and fills whichever of end time or
// duration can be derived from the other.
func CompleteDuration(g *Game, diag *Diagnostics) {
	if g.TotalDuration.Seconds == nil && strings.TrimSpace(g.TotalDuration.Raw) != "" {
		seconds, err := ParseDurationToSeconds(g.TotalDuration.Raw)
		if err != nil {
			diag.Warn("totalDuration", CodeInvalidDurationFormat, "totalDuration is not HH:MM:SS, MM:SS or seconds", map[string]any{
				"value": g.TotalDuration.Raw,
			})
		} else {
			g.TotalDuration = DurationOf(seconds)
		}
	}

	start := g.EffectiveStart()
	if start == nil {
		return
	}

	if g.GameEndDateTime == nil && g.TotalDuration.Seconds != nil {
		end := start.Add(time.Duration(*g.TotalDuration.Seconds) * time.Second).UTC()
		g.GameEndDateTime = &end
		g.GameEndDateTimeSource = EndSourceCalculated
		return
	}

	if g.GameEndDateTime != nil && g.GameEndDateTimeSource == "" {
		g.GameEndDateTimeSource = EndSourceProvided
	}

	if g.GameEndDateTime != nil && g.TotalDuration.Seconds == nil {
		elapsed := g.GameEndDateTime.Sub(*start)
		if elapsed >= 0 {
			g.TotalDuration = DurationOf(int(math.Round(elapsed.Seconds())))
		}
		return
	}

	if g.GameEndDateTime != nil && g.TotalDuration.Seconds != nil {
		elapsed := int(math.Round(g.GameEndDateTime.Sub(*start).Seconds()))
		diff := elapsed - *g.TotalDuration.Seconds
		if diff < 0 {
			diff = -diff
		}
		if time.Duration(diff)*time.Second > DurationTolerance {
			diag.Warn("totalDuration", CodeDurationMismatch, "totalDuration does not match end minus start", map[string]any{
				"totalDuration":   *g.TotalDuration.Seconds,
				"computedSeconds": elapsed,
				"differenceSec":   diff,
			})
		}
	}
}
