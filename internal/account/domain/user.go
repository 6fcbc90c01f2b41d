package domain

// User is a registered account. PasswordHash never leaves the service layer;
// use Profile for anything handed to a handler or a client.
type User struct {
	ID           string // ULID
	Username     string
	Email        string
	Name         string
	Phone        string
	PasswordHash string
}

// Profile is the user record with the password hash stripped.
type Profile struct {
	ID       string
	Username string
	Email    string
	Name     string
	Phone    string
}

func (u User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Phone:    u.Phone,
	}
}
