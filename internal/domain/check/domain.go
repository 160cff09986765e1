package check

import (
	"fmt"
	"strings"
	"time"
)

type State string

const (
	StateUp   State = "up"
	StateDown State = "down"
)

// Check is a validated monitoring target as persisted in the checks collection.
type Check struct {
	ID             string `json:"id"`
	UserPhone      string `json:"userPhone"`
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	State          State  `json:"state"`
	LastChecked    int64  `json:"lastChecked,omitempty"` // epoch ms, 0 until the first probe
}

func (c *Check) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Target is the absolute URL the check probes.
func (c *Check) Target() string {
	return c.Protocol + "://" + c.URL
}

func (c *Check) HasBeenChecked() bool { return c.LastChecked > 0 }

func (c *Check) Succeeds(code int) bool {
	for _, sc := range c.SuccessCodes {
		if sc == code {
			return true
		}
	}
	return false
}

// RawCheck is a check record as read from storage, before validation.
// Pointer fields distinguish absent keys from zero values.
type RawCheck struct {
	ID             *string  `json:"id"`
	UserPhone      *string  `json:"userPhone"`
	Protocol       *string  `json:"protocol"`
	URL            *string  `json:"url"`
	Method         *string  `json:"method"`
	SuccessCodes   []int    `json:"successCodes"`
	TimeoutSeconds *float64 `json:"timeoutSeconds"`
	State          *string  `json:"state"`
	LastChecked    *float64 `json:"lastChecked"`
}

type Rejection struct {
	Field  string
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("invalid check field %q: %s", r.Field, r.Reason)
}

type OutcomeError struct {
	Error bool   `json:"error"`
	Value string `json:"value"`
}

// Outcome is the result of a single probe: either a response code or an error.
type Outcome struct {
	Error        *OutcomeError `json:"error"`
	ResponseCode int           `json:"responseCode,omitempty"`
}

const TimeoutValue = "timeout"

func ResponseOutcome(code int) Outcome { return Outcome{ResponseCode: code} }

func ErrorOutcome(err error) Outcome {
	return Outcome{Error: &OutcomeError{Error: true, Value: err.Error()}}
}

func TimeoutOutcome() Outcome {
	return Outcome{Error: &OutcomeError{Error: true, Value: TimeoutValue}}
}

func (o Outcome) Failed() bool { return o.Error != nil && o.Error.Error }

func (o Outcome) TimedOut() bool { return o.Failed() && o.Error.Value == TimeoutValue }

// LogEntry is one line of a check's log stream.
type LogEntry struct {
	Check   Check   `json:"check"`
	Outcome Outcome `json:"outcome"`
	State   State   `json:"state"`
	Alert   bool    `json:"alert"`
	Time    int64   `json:"time"`
}

// AlertMessage renders the text sent to the owner when a check changes state.
func AlertMessage(c *Check) string {
	return fmt.Sprintf("Alert: Your check for %s %s is currently %s",
		strings.ToUpper(c.Method), c.Target(), c.State)
}
