package phone_test

import (
	"testing"

	"github.com/niksmo/farmstore/pkg/phone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"National", "0805 662 3864", "+2348056623864"},
		{"International", "+234 805 662 3864", "+2348056623864"},
		{"BareDigits", "2348056623864", "+2348056623864"},
		{"Garbage", "  call me  ", "call me"},
		{"Empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phone.NormalizeE164(tt.input, ""))
		})
	}
}

func TestDestinationID(t *testing.T) {
	id, err := phone.DestinationID("2348056623864", "")
	require.NoError(t, err)
	assert.Equal(t, "2348056623864", id)

	id, err = phone.DestinationID("08056623864", phone.DefaultRegion)
	require.NoError(t, err)
	assert.Equal(t, "2348056623864", id)

	_, err = phone.DestinationID("12", "")
	assert.ErrorIs(t, err, phone.ErrInvalidNumber)
}
