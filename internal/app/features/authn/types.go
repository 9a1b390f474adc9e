// internal/app/features/authn/types.go
package authn

import (
	"github.com/acuerdohq/acuerdo/internal/domain/models"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userView is the identity shape returned to clients.
type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// sessionResponse carries the bearer token for API clients; browser
// clients rely on the cookie set alongside it.
type sessionResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func viewOf(u models.User) userView {
	return userView{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
}
