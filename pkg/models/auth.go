package models

// Credentials identify the caller against the platform API
type Credentials struct {
	ServerAddress string `json:"server_address"`
	APIToken      string `json:"-"`
}

// User is the account the API token belongs to
type User struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
}
