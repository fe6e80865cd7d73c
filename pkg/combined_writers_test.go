package pkg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (fw failingWriter) Write(_ []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestCombinedWriter(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	cw := NewCombinedWriter(&buf1, &buf2)

	n, err := cw.Write([]byte("test message"))
	require.NoError(t, err)
	assert.Equal(t, 2*len("test message"), n)
	assert.Equal(t, "test message", buf1.String())
	assert.Equal(t, "test message", buf2.String())
}

func TestCombinedWriter_OneWriterFails(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCombinedWriter(&buf, failingWriter{})

	n, err := cw.Write([]byte("test"))
	require.Error(t, err)
	// the healthy writer still got the payload
	assert.Equal(t, len("test"), n)
	assert.Equal(t, "test", buf.String())
}

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(16)
	require.NoError(t, err)
	s2, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	exists, err := PathExists(dir, true)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists(dir+"/nope", false)
	require.NoError(t, err)
	assert.False(t, exists)
}
