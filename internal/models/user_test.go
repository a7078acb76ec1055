package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("SUPERUSER").Valid())
	assert.False(t, Role("admin").Valid())
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleTeacher.In(RoleAdmin, RoleTeacher))
	assert.False(t, RoleStudent.In(RoleAdmin, RoleTeacher))
	assert.False(t, RoleAdmin.In())
}

func TestUserWithProfileID(t *testing.T) {
	sid := "stu-1"
	tid := "tea-1"

	student := &UserWithProfile{StudentID: &sid}
	assert.Equal(t, &sid, student.ProfileID())

	teacher := &UserWithProfile{TeacherID: &tid}
	assert.Equal(t, &tid, teacher.ProfileID())

	admin := &UserWithProfile{}
	assert.Nil(t, admin.ProfileID())
}
