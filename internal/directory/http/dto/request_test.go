package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	valid := CreateUserRequest{
		Username:     "alice",
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		TempPassword: "Temp-Password-1",
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("MissingUsername", func(t *testing.T) {
		req := valid
		req.Username = ""
		assert.Error(t, req.Validate())
	})

	t.Run("UsernameWithWhitespace", func(t *testing.T) {
		req := valid
		req.Username = " alice "
		assert.Error(t, req.Validate())
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		assert.Error(t, req.Validate())
	})

	t.Run("ShortTempPassword", func(t *testing.T) {
		req := valid
		req.TempPassword = "short"
		assert.Error(t, req.Validate())
	})

	t.Run("OverlongDisplayName", func(t *testing.T) {
		req := valid
		req.DisplayName = strings.Repeat("a", 256)
		assert.Error(t, req.Validate())
	})
}

func TestEditUserRequest_Validate(t *testing.T) {
	t.Run("EmptyRequestIsValid", func(t *testing.T) {
		assert.NoError(t, EditUserRequest{}.Validate())
	})

	t.Run("ValidFields", func(t *testing.T) {
		email := "new@example.com"
		password := "New-Temp-Password"
		req := EditUserRequest{Email: &email, TempPassword: &password}
		assert.NoError(t, req.Validate())
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		email := "nope"
		req := EditUserRequest{Email: &email}
		assert.Error(t, req.Validate())
	})

	t.Run("EmptyTempPassword", func(t *testing.T) {
		password := ""
		req := EditUserRequest{TempPassword: &password}
		assert.Error(t, req.Validate())
	})
}

func TestCreateGroupRequest_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := CreateGroupRequest{Name: "engineering", Description: "builders"}
		assert.NoError(t, req.Validate())
	})

	t.Run("MissingName", func(t *testing.T) {
		req := CreateGroupRequest{}
		assert.Error(t, req.Validate())
	})

	t.Run("UnsafeName", func(t *testing.T) {
		req := CreateGroupRequest{Name: "not ok!"}
		assert.Error(t, req.Validate())
	})

	t.Run("OverlongDescription", func(t *testing.T) {
		req := CreateGroupRequest{Name: "engineering", Description: strings.Repeat("a", 501)}
		assert.Error(t, req.Validate())
	})
}

func TestMemberRequest_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, MemberRequest{Username: "alice"}.Validate())
	})

	t.Run("Blank", func(t *testing.T) {
		assert.Error(t, MemberRequest{Username: "   "}.Validate())
	})
}
