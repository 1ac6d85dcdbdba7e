// Package clerk resolves authenticated user IDs into authgate identities
// through the Clerk backend API.
//
// The role of an identity is read from the user's public metadata "role"
// entry and projected into an authgate.UserRole; users without that entry
// have authgate.RoleUnset.
package clerk
