package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer

	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  ABC-123 \n")), "Plate", &out)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", got)
	assert.Equal(t, "Plate\n> ", out.String())

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("partial")), "p", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "p", io.Discard)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = GetPassword(io.Discard)
	require.Error(t, err)
}

func TestParseTimeInput(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 5, 9, 0, time.Local)

	tests := []struct {
		in      string
		want    string
		wantNil bool
		wantErr bool
	}{
		{in: "", wantNil: true},
		{in: "now", want: "2026-10-18 14:05:09"},
		{in: "NOW", want: "2026-10-18 14:05:09"},
		{in: "09:30", want: "2026-10-18 09:30:00"},
		{in: "2026-10-17 22:15:00", want: "2026-10-17 22:15:00"},
		{in: "yesterday", wantErr: true},
		{in: "2026-10-17T22:15:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimeInput(tt.in, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
