package test_utils

import (
	"context"

	"github.com/sonaeru/sonaeru/pkg/user"
)

// TestUser is a canned household member for service and handler tests.
var TestUser = user.User{
	Id:          1,
	Uid:         "a4f5c1de-8d10-4f8e-9df1-1f2a3b4c5d6e",
	Username:    "test_member",
	DisplayName: "Test Member",
	Settings:    user.Settings{Timezone: "Asia/Tokyo"},
}

// ContextWithUser returns a context carrying TestUser, the way the HTTP
// middleware would populate it.
func ContextWithUser() context.Context {
	return user.WithUser(context.Background(), TestUser)
}
