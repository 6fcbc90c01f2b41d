// Package accountsdk is the Go client for the Mindful account service and
// the home of its wire types.
//
// The server encodes every request and response with these types, so the
// client and the service cannot drift apart.
//
//	c := accountsdk.NewClient("http://localhost:8080")
//	user, err := c.Signup(ctx, accountsdk.SignupRequest{...})
//
// Calls on the identity-asserted surface go through a Session, which sends
// the Username header on every request:
//
//	s := c.As("alice")
//	profile, err := s.Profile(ctx)
//
// Errors returned by the service are *APIError values; compare codes with
// errors.Is against the predefined errors:
//
//	if errors.Is(err, accountsdk.ErrIncorrectAnswers) { ... }
package accountsdk
