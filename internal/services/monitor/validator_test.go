package monitor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/uptimed/internal/domain/check"
)

func rawFrom(t *testing.T, js string) *check.RawCheck {
	t.Helper()
	var raw check.RawCheck
	require.NoError(t, json.Unmarshal([]byte(js), &raw))
	return &raw
}

const validJSON = `{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"https",
"url":"example.com/status","method":"get","successCodes":[200,201],"timeoutSeconds":3}`

func TestValidate_DefaultsStateAndLastChecked(t *testing.T) {
	c, err := Validate(rawFrom(t, validJSON))
	require.NoError(t, err)
	assert.Equal(t, check.StateDown, c.State)
	assert.Zero(t, c.LastChecked)
	assert.False(t, c.HasBeenChecked())
	assert.Equal(t, "https://example.com/status", c.Target())
	assert.Equal(t, []int{200, 201}, c.SuccessCodes)
}

func TestValidate_KeepsStoredState(t *testing.T) {
	raw := rawFrom(t, validJSON)
	up, ts := "up", float64(1_700_000_000_000)
	raw.State, raw.LastChecked = &up, &ts

	c, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, check.StateUp, c.State)
	assert.Equal(t, int64(1_700_000_000_000), c.LastChecked)
}

func TestValidate_UnknownStateFallsBackToDown(t *testing.T) {
	raw := rawFrom(t, validJSON)
	s := "sideways"
	raw.State = &s

	c, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, check.StateDown, c.State)
}

func TestValidate_TrimsWhitespace(t *testing.T) {
	raw := rawFrom(t, validJSON)
	id, url := "  abcdefghij0123456789 ", " example.com "
	raw.ID, raw.URL = &id, &url

	c, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij0123456789", c.ID)
	assert.Equal(t, "example.com", c.URL)
}

func TestValidate_TimeoutBounds(t *testing.T) {
	for _, ok := range []float64{1, 2, 3, 4, 5} {
		raw := rawFrom(t, validJSON)
		v := ok
		raw.TimeoutSeconds = &v
		c, err := Validate(raw)
		require.NoError(t, err, "timeout %v", ok)
		assert.Equal(t, int(ok), c.TimeoutSeconds)
	}
	for _, bad := range []float64{0, 6, 2.5, -1} {
		raw := rawFrom(t, validJSON)
		v := bad
		raw.TimeoutSeconds = &v
		_, err := Validate(raw)
		var rej *check.Rejection
		require.ErrorAs(t, err, &rej, "timeout %v", bad)
		assert.Equal(t, "timeoutSeconds", rej.Field)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := map[string]struct {
		js    string
		field string
	}{
		"short id": {`{"id":"abc","userPhone":"5551234567","protocol":"http","url":"x","method":"get","successCodes":[200],"timeoutSeconds":1}`, "id"},
		"bad phone": {`{"id":"abcdefghij0123456789","userPhone":"555","protocol":"http","url":"x","method":"get","successCodes":[200],"timeoutSeconds":1}`, "userPhone"},
		"ftp": {`{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"ftp","url":"x","method":"get","successCodes":[200],"timeoutSeconds":1}`, "protocol"},
		"blank url": {`{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"http","url":"   ","method":"get","successCodes":[200],"timeoutSeconds":1}`, "url"},
		"patch": {`{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"http","url":"x","method":"patch","successCodes":[200],"timeoutSeconds":1}`, "method"},
		"upper GET": {`{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"http","url":"x","method":"GET","successCodes":[200],"timeoutSeconds":1}`, "method"},
		"no codes": {`{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"http","url":"x","method":"get","timeoutSeconds":1}`, "successCodes"},
		"empty codes": {`{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"http","url":"x","method":"get","successCodes":[],"timeoutSeconds":1}`, "successCodes"},
		"no timeout": {`{"id":"abcdefghij0123456789","userPhone":"5551234567","protocol":"http","url":"x","method":"get","successCodes":[200]}`, "timeoutSeconds"},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			_, err := Validate(rawFrom(t, tc.js))
			var rej *check.Rejection
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tc.field, rej.Field)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	_, err := Validate(nil)
	require.Error(t, err)
}
