package service

import (
	"fmt"

	"github.com/zfogg/wayfarer/cli/pkg/credentials"
	clierrors "github.com/zfogg/wayfarer/cli/pkg/errors"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
	"github.com/zfogg/wayfarer/cli/pkg/session"
)

// authorize allows action on content written by authorID when the signed-in
// user wrote it or moderates the forum. The backend enforces the same rule;
// checking first saves a round trip and gives a clearer message.
func authorize(sessions *session.Manager, authorID, action string) (*credentials.Credentials, error) {
	creds := sessions.Current()
	if creds == nil {
		return nil, clierrors.UnauthorizedError()
	}
	if creds.UserID != "" && creds.UserID == authorID {
		return creds, nil
	}
	if creds.IsModerator() {
		logger.Info("Acting as moderator", "action", action, "author_id", authorID, "role", creds.Role)
		return creds, nil
	}
	return nil, clierrors.ForbiddenError(fmt.Sprintf("You can only %s your own content", action))
}
