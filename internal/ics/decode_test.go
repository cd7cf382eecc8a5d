package ics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_UTF8(t *testing.T) {
	text, err := Decode(Source{Location: "a.ics"}, []byte("SUMMARY:Caffè"), nil)
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY:Caffè", text)
}

func TestDecode_StripsUTF8BOM(t *testing.T) {
	text, err := Decode(Source{}, append([]byte{0xEF, 0xBB, 0xBF}, "BEGIN:VCALENDAR"...), nil)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", text)
}

func TestDecode_Latin1Fallback(t *testing.T) {
	// "Caffè" in ISO-8859-1: è is 0xE8, which is invalid UTF-8 on its own.
	body := []byte{'C', 'a', 'f', 'f', 0xE8}
	text, err := Decode(Source{}, body, nil)
	require.NoError(t, err)
	assert.Equal(t, "Caffè", text)
}

func TestDecode_UTF16BOM(t *testing.T) {
	body := []byte{0xFF, 0xFE, 'O', 0, 'K', 0}
	text, err := Decode(Source{}, body, nil)
	require.NoError(t, err)
	assert.Equal(t, "OK", text)
}

func TestDecode_UTF8OnlyRejectsLatin1(t *testing.T) {
	body := []byte{'C', 'a', 'f', 'f', 0xE8}
	_, err := Decode(Source{Location: "/tmp/team.ics"}, body, []string{"utf-8"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "team.ics", de.Source.Name())
	assert.Contains(t, err.Error(), "team.ics")
}

func TestDecode_BinaryRejected(t *testing.T) {
	_, err := Decode(Source{}, []byte{0x00, 0x01, 0x02, 0x00}, nil)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_UnknownEncodingSkipped(t *testing.T) {
	text, err := Decode(Source{}, []byte("plain"), []string{"klingon", "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "plain", text)
}
