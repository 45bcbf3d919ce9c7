package model

// Notification is a message addressed to one user.
type Notification struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
	Link    string `json:"link"`
}
