// Package mocks provides shared mock implementations for testing.
//
// Each mock exposes function fields named after the interface methods
// (GenerateFn, ValidateTokenFn, ...). A nil function field falls back to the
// mock's default values, so tests only set up what they exercise:
//
//	gen := mocks.NewMockGeneratorWithText(`{"latitude": 1, "longitude": 2}`)
//	jwt := &mocks.MockJWTService{Claims: &auth.Claims{UserID: userID}}
//
// Package-local mocks are still fine when a test needs behaviour specific to
// one package; add a mock here once two packages need it.
package mocks
