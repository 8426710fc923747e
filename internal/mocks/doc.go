// Package mocks provides centralized mock implementations for testing.
//
// Store mocks are built on testify/mock and are configured with On/Return.
// Service mocks expose function fields and fall back to the default values
// when a function is not set:
//
//	jwt := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: userID}, nil
//	    },
//	}
package mocks
