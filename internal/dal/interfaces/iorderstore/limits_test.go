package iorderstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-10))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, 100, ClampLimit(100))
	assert.Equal(t, MaxListLimit, ClampLimit(MaxListLimit))
	assert.Equal(t, MaxListLimit, ClampLimit(MaxListLimit+1))
}

func TestClampWindow(t *testing.T) {
	assert.Equal(t, DefaultWindowDays, ClampWindow(0))
	assert.Equal(t, DefaultWindowDays, ClampWindow(-1))
	assert.Equal(t, 1, ClampWindow(1))
	assert.Equal(t, 90, ClampWindow(90))
	assert.Equal(t, MaxWindowDays, ClampWindow(MaxWindowDays+1))
}
