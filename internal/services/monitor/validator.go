package monitor

import (
	"math"
	"strings"

	"github.com/NordCoder/uptimed/internal/domain/check"
)

const (
	idLen          = 20
	phoneLen       = 10
	minTimeoutSecs = 1
	maxTimeoutSecs = 5
)

var (
	protocols = map[string]bool{"http": true, "https": true}
	methods   = map[string]bool{"post": true, "get": true, "put": true, "delete": true}
)

func reject(field, reason string) (check.Check, error) {
	return check.Check{}, &check.Rejection{Field: field, Reason: reason}
}

// Validate normalizes a stored record into a schedulable check. State and
// last-checked are optional and default to down / never.
func Validate(raw *check.RawCheck) (check.Check, error) {
	if raw == nil {
		return reject("record", "missing")
	}

	id := trimmed(raw.ID)
	if len(id) != idLen {
		return reject("id", "must be a 20 character string")
	}
	phone := trimmed(raw.UserPhone)
	if len(phone) != phoneLen {
		return reject("userPhone", "must be a 10 character string")
	}
	if raw.Protocol == nil || !protocols[*raw.Protocol] {
		return reject("protocol", "must be http or https")
	}
	url := trimmed(raw.URL)
	if url == "" {
		return reject("url", "must be a non-empty string")
	}
	if raw.Method == nil || !methods[*raw.Method] {
		return reject("method", "must be one of post, get, put, delete")
	}
	if len(raw.SuccessCodes) == 0 {
		return reject("successCodes", "must be a non-empty list")
	}
	if raw.TimeoutSeconds == nil {
		return reject("timeoutSeconds", "missing")
	}
	t := *raw.TimeoutSeconds
	if t != math.Trunc(t) || t < minTimeoutSecs || t > maxTimeoutSecs {
		return reject("timeoutSeconds", "must be a whole number from 1 to 5")
	}

	c := check.Check{
		ID:             id,
		UserPhone:      phone,
		Protocol:       *raw.Protocol,
		URL:            url,
		Method:         *raw.Method,
		SuccessCodes:   append([]int(nil), raw.SuccessCodes...),
		TimeoutSeconds: int(t),
		State:          check.StateDown,
	}
	if raw.State != nil && (*raw.State == string(check.StateUp) || *raw.State == string(check.StateDown)) {
		c.State = check.State(*raw.State)
	}
	if raw.LastChecked != nil && *raw.LastChecked > 0 {
		c.LastChecked = int64(*raw.LastChecked)
	}
	return c, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
