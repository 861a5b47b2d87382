package prompt

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderReadsSuccessiveLines(t *testing.T) {
	r := New(bytes.NewBufferString("Secret!1\r\n two words \n  ana \n"))

	first, err := r.Password()
	require.NoError(t, err)
	assert.Equal(t, "Secret!1", first)

	second, err := r.Password()
	require.NoError(t, err)
	assert.Equal(t, " two words ", second, "passwords are kept as typed")

	name, err := r.Line()
	require.NoError(t, err)
	assert.Equal(t, "ana", name)

	_, err = r.Line()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderEmptyLine(t *testing.T) {
	r := New(bytes.NewBufferString("\n"))
	got, err := r.Password()
	require.NoError(t, err)
	assert.Empty(t, got)
}
