package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendancePercentage(t *testing.T) {
	assert.Equal(t, 0.0, AttendancePercentage(0, 0))
	assert.Equal(t, 75.0, AttendancePercentage(3, 4))
	assert.Equal(t, 100.0, AttendancePercentage(10, 10))
	assert.Equal(t, 66.7, AttendancePercentage(2, 3))
	assert.Equal(t, 0.0, AttendancePercentage(0, 5))
}

func TestAttendanceStatusValid(t *testing.T) {
	assert.True(t, AttendanceStatus("PRESENT").Valid())
	assert.True(t, AttendanceStatus("ABSENT").Valid())
	assert.True(t, AttendanceStatus("LATE").Valid())
	assert.False(t, AttendanceStatus("HOLIDAY").Valid())
	assert.False(t, AttendanceStatus("").Valid())
}
