package auth

import (
	"fmt"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
)

// Action names what a caller is attempting, e.g. {"update", "post"}.
// Object, when set, replaces "a <Resource>" in the login message, e.g.
// "messages" for "You must be logged in to send messages".
type Action struct {
	Verb     string
	Resource string
	Object   string
}

func (a Action) object() string {
	if a.Object != "" {
		return a.Object
	}
	return "a " + a.Resource
}

// RequireCaller fails with an authentication error when there is no caller.
func RequireCaller(caller *models.User, action Action) error {
	if caller == nil {
		return common.Authentication(fmt.Sprintf("You must be logged in to %s %s", action.Verb, action.object()))
	}
	return nil
}

// RequireOwner additionally demands that the caller owns the resource.
func RequireOwner(caller *models.User, ownerID string, action Action) error {
	if err := RequireCaller(caller, action); err != nil {
		return err
	}
	if caller.ID != ownerID {
		return common.Authentication(fmt.Sprintf("You can only %s your own %ss", action.Verb, action.Resource))
	}
	return nil
}
