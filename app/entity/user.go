package entity

type User struct {
	ID uint64

	Username  string
	FirstName string
	LastName  string
	Email     string

	IsStaff bool
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
