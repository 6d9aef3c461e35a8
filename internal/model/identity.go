package model

import "github.com/labstack/echo/v4"

const (
	// GatewayDataKey stores the GatewayData injected by the API gateway.
	GatewayDataKey = "gateway_data"
	// AccountKey stores the Account of the authenticated session.
	AccountKey = "account"
)

// Gateway headers. The gateway strips these from client traffic and sets
// them itself, so they are trusted as-is.
const (
	HeaderAccountID    = "X-Account-Id"
	HeaderWhitelabelID = "X-Whitelabel-Id"
	HeaderUserID       = "X-User-Id"
)

// GatewayData is the caller identity forwarded by the upstream gateway.
type GatewayData struct {
	AccountID    string
	WhitelabelID string
	UserID       string
}

// Account is the identity of an authenticated session.
// ID is the active organization, UserID the session subject.
type Account struct {
	ID     string
	UserID string
	Role   string
}

// GetGatewayData returns the gateway identity of the request, zero when absent.
func GetGatewayData(c echo.Context) GatewayData {
	if gw, ok := c.Get(GatewayDataKey).(GatewayData); ok {
		return gw
	}
	return GatewayData{}
}

// GetAccount returns the session identity of the request, zero when absent.
func GetAccount(c echo.Context) Account {
	if acc, ok := c.Get(AccountKey).(Account); ok {
		return acc
	}
	return Account{}
}

// OptionalString returns nil for an empty string.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
