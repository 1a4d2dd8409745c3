package storage

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReaderReportsMonotonically(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 1000)
	var reported []int

	pr := newProgressReader(bytes.NewReader(body), int64(len(body)), func(pct int) {
		reported = append(reported, pct)
	})

	buf := make([]byte, 100)
	for {
		_, err := pr.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	require.NotEmpty(t, reported)
	assert.Equal(t, 100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		assert.Greater(t, reported[i], reported[i-1])
	}
}

func TestProgressReaderNoCallback(t *testing.T) {
	pr := newProgressReader(bytes.NewReader([]byte("abc")), 3, nil)
	out, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)
}

func TestProgressReaderUnknownTotal(t *testing.T) {
	called := false
	pr := newProgressReader(bytes.NewReader([]byte("abc")), 0, func(int) { called = true })
	_, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.False(t, called)
}
