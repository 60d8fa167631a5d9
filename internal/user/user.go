package user

// User is the single local profile record.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	IsSubscriber bool   `json:"isSubscriber"`
	AlertCount   int    `json:"alertCount"`
}

type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
