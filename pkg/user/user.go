package user

// User is a household member. Every domain row is scoped by the member that
// owns it; the member is resolved from the X-User-Id request header.
type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

type Settings struct {
	Timezone string
}
