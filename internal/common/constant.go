package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// request/response operations.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// WebSocketTokenParam is the query parameter read from the WebSocket upgrade
// request when the client cannot set headers.
const WebSocketTokenParam = "authToken"
