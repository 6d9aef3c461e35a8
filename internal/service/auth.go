package service

import (
	"github.com/clerk/clerk-sdk-go/v2"

	"github.com/deppfellow/codetemplate/internal/model"
)

// AuthService configures Clerk and maps verified sessions onto accounts.
type AuthService struct{}

// NewAuthService registers the Clerk secret used to verify session tokens.
func NewAuthService(secretKey string) *AuthService {
	clerk.SetKey(secretKey)
	return &AuthService{}
}

// AccountFromClaims maps Clerk session claims onto an Account. The active
// organization is the account; the subject is the user.
func (a *AuthService) AccountFromClaims(claims *clerk.SessionClaims) model.Account {
	if claims == nil {
		return model.Account{}
	}
	return model.Account{
		ID:     claims.ActiveOrganizationID,
		UserID: claims.Subject,
		Role:   claims.ActiveOrganizationRole,
	}
}
