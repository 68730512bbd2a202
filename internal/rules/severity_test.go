package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityNames(t *testing.T) {
	t.Parallel()

	for s := SeverityError; s <= SeverityOff; s++ {
		parsed, err := ParseSeverity(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)

		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.JSONEq(t, `"`+s.String()+`"`, string(data))
	}
	assert.Equal(t, "unknown", Severity(99).String())
	assert.Equal(t, "unknown", Severity(-1).String())
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{input: "warn", want: SeverityWarning},
		{input: " Style ", want: SeverityStyle},
		{input: "ERROR", want: SeverityError},
		{input: "0", want: SeverityOff},
		{input: "1", want: SeverityWarning},
		{input: "2", want: SeverityError},
		{input: "3", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "loud", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSeverity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverity_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{input: `"info"`, want: SeverityInfo},
		{input: `"warn"`, want: SeverityWarning},
		{input: `2`, want: SeverityError},
		{input: `0`, want: SeverityOff},
		{input: `1.5`, wantErr: true},
		{input: `true`, wantErr: true},
		{input: `"nope"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			var s Severity
			err := json.Unmarshal([]byte(tt.input), &s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	assert.True(t, SeverityError.IsAtLeast(SeverityWarning))
	assert.True(t, SeverityWarning.IsAtLeast(SeverityWarning))
	assert.False(t, SeverityInfo.IsAtLeast(SeverityWarning))
	assert.False(t, SeverityStyle.IsAtLeast(SeverityInfo))

	assert.True(t, SeverityStyle.Enabled())
	assert.False(t, SeverityOff.Enabled())

	var v Violation
	assert.Equal(t, SeverityError, v.Severity, "zero value must report")
}
