// Package common contains shared constants and sentinel errors used across
// PaperTrail components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer access
// token on outbound requests.
const AuthorizationHeaderName = "Authorization"
