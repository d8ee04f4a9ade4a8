package session

// User is the cached profile snapshot of the signed-in user. It is display
// data only; authorization always derives from the token.
type User struct {
	ID                   int64  `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Verified             bool   `json:"is_verified"`
	NotificationsEnabled bool   `json:"notifications"`
}
