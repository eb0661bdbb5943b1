package models

import "errors"

// ErrRecordNotFound is returned by repositories when no row matches
var ErrRecordNotFound = errors.New("record not found")

// ErrRoleMismatch is returned when a conditional role write finds a different stored role
var ErrRoleMismatch = errors.New("stored role does not match")
