package refresh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipscope/flipscope/pkg/logger"
)

func TestScheduleValidSpec(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.Schedule("@daily", func() error { return nil }))

	s.Start()
	s.Stop()
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := New(logger.NewNop())

	err := s.Schedule("every sunday-ish", func() error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every sunday-ish")
}
