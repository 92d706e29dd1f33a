// Package services holds the credential store, the auth gate and the comment service.
// Every error leaving this package is an oops error carrying one of the codes below.
package services

import "github.com/samber/oops"

const (
	// CodeStoreFailure covers rejected writes and failed reads/crypto at the store boundary.
	CodeStoreFailure = "STORE_FAILURE"
	// CodeInvalidCredentials is the single login failure, whatever the cause.
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	// CodeUnauthenticated means no usable session token was presented.
	CodeUnauthenticated = "UNAUTHENTICATED"
	// CodeUserNotFound is internal to identity resolution.
	CodeUserNotFound = "USER_NOT_FOUND"
	// CodeCommentNotFound is surfaced to clients as a null comment.
	CodeCommentNotFound = "COMMENT_NOT_FOUND"
)

// InvalidCredentialsMessage is shown for unknown usernames and wrong passwords alike.
const InvalidCredentialsMessage = "Invalid username or password"

// HasCode reports whether err is an oops error tagged with code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}
