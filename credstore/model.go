package credstore

// UserRecord is the full stored form of a registered user, including the
// credential secret. It never leaves the store layer except through
// [Store.FindByEmail], which the session manager consumes to check a
// login attempt.
type UserRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Secret    string `json:"password"`
	AvatarURL string `json:"avatar,omitempty"`
}

// PublicUser is the secret-free projection of a [UserRecord]. It is the
// only user shape persisted in the session slot and the only one exposed
// through manager state.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar,omitempty"`
}

// Public returns the secret-free projection of the record.
func (u UserRecord) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
