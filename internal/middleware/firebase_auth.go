package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialnet/backend/internal/models"
)

// IDTokenVerifier is the part of the Firebase auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserByFirebaseUID resolves a Firebase UID to a local user.
type UserByFirebaseUID interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseVerifier accepts Firebase ID tokens of users already linked to a
// local account through /firebase-login.
type FirebaseVerifier struct {
	client IDTokenVerifier
	users  UserByFirebaseUID
}

func NewFirebaseVerifier(client IDTokenVerifier, users UserByFirebaseUID) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := v.users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: user.ID, Email: user.Email}, nil
}
