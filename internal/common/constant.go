package common

// AuthorizationHeader carries the bearer access token on API requests.
const AuthorizationHeader = "Authorization"

// RequestIDHeader is accepted from clients and echoed on every response.
const RequestIDHeader = "X-Request-Id"

// RefreshTokenCookie is the name of the HTTP-only refresh token cookie.
const RefreshTokenCookie = "refresh_token"
