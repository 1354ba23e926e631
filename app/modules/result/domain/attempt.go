package resultdomain

import (
	"fmt"
	"strconv"
)

// Attempt is one raw solve outcome. Positive values are centiseconds, moves or
// points depending on the event format; the remaining values are sentinels.
type Attempt int64

const (
	// Skipped marks an attempt that was not taken because the competitor missed the cutoff.
	// As an aggregated average it means "not applicable".
	Skipped Attempt = 0
	DNF     Attempt = -1
	DNS     Attempt = -2
	// Unknown is a successful attempt whose value was not recorded (24h in centiseconds).
	// It ranks below every real value.
	Unknown Attempt = 8_640_000
)

// IsReal reports whether a carries an actual measured value.
func (a Attempt) IsReal() bool {
	return a > 0 && a != Unknown
}

// IsSuccess reports whether a is a completed attempt, including one of unknown value.
func (a Attempt) IsSuccess() bool {
	return a > 0
}

// IsValid reports whether a is inside the attempt encoding domain.
func (a Attempt) IsValid() bool {
	return a >= DNS && a <= Unknown
}

func (a Attempt) String() string {
	switch {
	case a == DNF:
		return "DNF"
	case a == DNS:
		return "DNS"
	case a == Unknown:
		return "?"
	case a == Skipped:
		return ""
	default:
		return strconv.FormatInt(int64(a), 10)
	}
}

// Display renders a for humans according to the event format. Averages of number
// and points events are stored in hundredths.
func (e Event) Display(a Attempt, average bool) string {
	if !a.IsReal() {
		return a.String()
	}
	switch e.Format {
	case FormatTime:
		return formatCentiseconds(int64(a))
	default:
		if average {
			return fmt.Sprintf("%d.%02d", a/100, a%100)
		}
		return strconv.FormatInt(int64(a), 10)
	}
}

func formatCentiseconds(cs int64) string {
	hours := cs / 360000
	minutes := cs / 6000 % 60
	seconds := cs / 100 % 60
	hundredths := cs % 100
	switch {
	case hours > 0:
		return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, hundredths)
	case minutes > 0:
		return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, hundredths)
	default:
		return fmt.Sprintf("%d.%02d", seconds, hundredths)
	}
}
