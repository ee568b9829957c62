package transport

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type NewScopeRequest struct {
	Name string `json:"name"`
}

type ErrorResponse struct {
	Detail any `json:"detail"`
}
