// Package mocks provides function-field test doubles for the store and auth
// interfaces.
//
// Each mock exposes one Fn field per interface method. A nil Fn falls back to
// a simple default so tests only stub the calls they care about:
//
//	tokens := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: "user-1"}, nil
//	    },
//	}
package mocks
