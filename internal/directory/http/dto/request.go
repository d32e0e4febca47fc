// Package dto contains request and response types for the directory API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/runavault/runavault/internal/validation"
)

// CreateUserRequest represents the payload for user creation.
type CreateUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	TempPassword string `json:"tempPassword"`
}

// Validate validates the create user request.
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255).Error("username must be between 1 and 255 characters"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			customValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&r.DisplayName,
			validation.Length(0, 255).Error("display name must be at most 255 characters"),
		),
		validation.Field(&r.TempPassword,
			validation.Required.Error("temporary password is required"),
			validation.Length(8, 128).Error("temporary password must be between 8 and 128 characters"),
		),
	)
}

// EditUserRequest represents the payload for user edition.
// Nil fields are left unchanged.
type EditUserRequest struct {
	Email        *string `json:"email"`
	DisplayName  *string `json:"displayName"`
	TempPassword *string `json:"tempPassword"`
}

// Validate validates the edit user request.
func (r EditUserRequest) Validate() error {
	if r.Email != nil {
		err := validation.Validate(*r.Email,
			validation.Required.Error("email is required"),
			customValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		)
		if err != nil {
			return err
		}
	}
	if r.DisplayName != nil {
		err := validation.Validate(*r.DisplayName,
			validation.Length(0, 255).Error("display name must be at most 255 characters"),
		)
		if err != nil {
			return err
		}
	}
	if r.TempPassword != nil {
		err := validation.Validate(*r.TempPassword,
			validation.Required.Error("temporary password must not be empty"),
			validation.Length(8, 128).Error("temporary password must be between 8 and 128 characters"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateGroupRequest represents the payload for group creation.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates the create group request.
func (r CreateGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			customValidation.GroupName,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&r.Description,
			validation.Length(0, 500).Error("description must be at most 500 characters"),
		),
	)
}

// MemberRequest represents the payload for adding a user to a group.
type MemberRequest struct {
	Username string `json:"username"`
}

// Validate validates the member request.
func (r MemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			customValidation.NotBlank,
		),
	)
}
