package engine

// Outcome is the terminal classification of one trial.
type Outcome int

const (
	OutcomeNone Outcome = iota
	CorrectGo
	CorrectNoGo
	CommissionError
	CommissionOutlier
	OmissionOutlier
)

// Outcomes lists every real outcome in report order.
var Outcomes = []Outcome{CorrectGo, CorrectNoGo, CommissionError, CommissionOutlier, OmissionOutlier}

func (o Outcome) String() string {
	switch o {
	case CorrectGo:
		return "correct_go"
	case CorrectNoGo:
		return "correct_no_go"
	case CommissionError:
		return "commission_error"
	case CommissionOutlier:
		return "commission_outlier"
	case OmissionOutlier:
		return "omission_outlier"
	default:
		return "none"
	}
}

// Correct reports whether the participant did the right thing.
func (o Outcome) Correct() bool {
	return o == CorrectGo || o == CorrectNoGo
}

// Style is a presentation hint for feedback text.
type Style string

const (
	StyleGood Style = "good"
	StyleBad  Style = "bad"
	StyleWarn Style = "warn"
)

// Feedback returns the text and style shown after a trial.
func (o Outcome) Feedback() (string, Style) {
	switch o {
	case CorrectGo, CorrectNoGo:
		return "Good!", StyleGood
	case CommissionError:
		return "Bad!", StyleBad
	case CommissionOutlier:
		return "TooFast!", StyleWarn
	case OmissionOutlier:
		return "TooLate!", StyleWarn
	default:
		return "", StyleWarn
	}
}

// ClassifyResponse classifies a press rtMs milliseconds after onset.
// Too-fast presses are outliers even on the target digit.
func ClassifyResponse(rtMs int, isTarget bool, outlierMs int) Outcome {
	switch {
	case rtMs < outlierMs:
		return CommissionOutlier
	case isTarget:
		return CommissionError
	default:
		return CorrectGo
	}
}

// ClassifyTimeout classifies a trial whose response window expired.
func ClassifyTimeout(isTarget bool) Outcome {
	if isTarget {
		return CorrectNoGo
	}
	return OmissionOutlier
}

// Counts holds the number of trials per outcome.
type Counts struct {
	CorrectGo          int
	CorrectNoGo        int
	CommissionErrors   int
	CommissionOutliers int
	OmissionOutliers   int
}

// Add increments the counter for o.
func (c *Counts) Add(o Outcome) {
	switch o {
	case CorrectGo:
		c.CorrectGo++
	case CorrectNoGo:
		c.CorrectNoGo++
	case CommissionError:
		c.CommissionErrors++
	case CommissionOutlier:
		c.CommissionOutliers++
	case OmissionOutlier:
		c.OmissionOutliers++
	}
}

// Total returns the sum of all counters.
func (c Counts) Total() int {
	return c.CorrectGo + c.CorrectNoGo + c.CommissionErrors + c.CommissionOutliers + c.OmissionOutliers
}

// Correct returns CorrectGo + CorrectNoGo.
func (c Counts) Correct() int {
	return c.CorrectGo + c.CorrectNoGo
}
