package models

import "time"

// DefaultPhotoURL is used when a user has not uploaded a profile photo.
const DefaultPhotoURL = "https://png.pngitem.com/pimgs/s/508-5087236_tab-profile-f-user-icon-white-fill-hd.png"

// User is a registered account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        string    `json:"_id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Gender    string    `json:"gender,omitempty"`
	Age       int       `json:"age,omitempty"`
	About     string    `json:"about,omitempty"`
	Skills    []string  `json:"skills,omitempty"`
	PhotoURL  string    `json:"photoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Card is the public projection of a user attached to chat lists and
// presence payloads.
type Card struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhotoURL  string `json:"photoUrl"`
}

// Card returns the public projection of the user.
func (u *User) Card() Card {
	return Card{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		PhotoURL:  u.PhotoURL,
	}
}
