package iohelper

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBody_NilReader(t *testing.T) {
	var buf bytes.Buffer
	n, err := ReadBody(&buf, nil, MaxBodySize)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, buf.Len())
}

func TestReadBody_RespectsLimit(t *testing.T) {
	var buf bytes.Buffer
	n, err := ReadBody(&buf, strings.NewReader(strings.Repeat("x", 100)), 10)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)
	assert.Equal(t, strings.Repeat("x", 10), buf.String())
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func TestDrainAndClose(t *testing.T) {
	rc := &trackingCloser{Reader: bytes.NewReader(make([]byte, 1024))}

	assert.NoError(t, DrainAndClose(rc))
	assert.True(t, rc.closed)

	n, _ := rc.Read(make([]byte, 1))
	assert.Zero(t, n)
	assert.NoError(t, DrainAndClose(nil))
}
