package models

// Credentials are the login parameters sent to the remote API.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Token is a signed bearer token returned by the remote API together with
// the user id recovered from its subject claim.
type Token struct {
	SignedString string `json:"-"`
	UserID       int64  `json:"-"`
}
