package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentStatusTransitions(t *testing.T) {
	assert.True(t, EnrollmentStatusEnrolled.CanTransitionTo(EnrollmentStatusDropped))
	assert.True(t, EnrollmentStatusEnrolled.CanTransitionTo(EnrollmentStatusCompleted))

	// Terminal states never move back.
	assert.False(t, EnrollmentStatusCompleted.CanTransitionTo(EnrollmentStatusEnrolled))
	assert.False(t, EnrollmentStatusDropped.CanTransitionTo(EnrollmentStatusEnrolled))
	assert.False(t, EnrollmentStatusCompleted.CanTransitionTo(EnrollmentStatusDropped))
	assert.False(t, EnrollmentStatusDropped.CanTransitionTo(EnrollmentStatusCompleted))
}

func TestEnrollmentStatusSameValue(t *testing.T) {
	assert.True(t, EnrollmentStatusEnrolled.CanTransitionTo(EnrollmentStatusEnrolled))
	assert.True(t, EnrollmentStatusCompleted.CanTransitionTo(EnrollmentStatusCompleted))
}

func TestEnrollmentStatusValid(t *testing.T) {
	assert.True(t, EnrollmentStatusEnrolled.Valid())
	assert.False(t, EnrollmentStatus("PENDING").Valid())
}
