package oauth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/FinWise/internal/models"
)

func TestGoogleVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id_token") {
		case "good":
			io.WriteString(w, `{"aud":"app.apps","sub":"123","email":"a@b.c","email_verified":"true","name":"Ann"}`)
		case "other-aud":
			io.WriteString(w, `{"aud":"evil.apps","sub":"123","email":"a@b.c","email_verified":"true"}`)
		case "unverified":
			io.WriteString(w, `{"aud":"app.apps","sub":"123","email":"a@b.c","email_verified":"false"}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_token","error_description":"Invalid Value"}`)
		}
	}))
	defer srv.Close()

	g := &Google{Endpoint: srv.URL, ClientIDs: []string{"app.apps"}}
	ctx := context.Background()

	id, err := g.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, &Identity{Provider: models.ProviderGoogle, Subject: "123", Email: "a@b.c", Name: "Ann"}, id)

	for _, tok := range []string{"other-aud", "unverified", "garbage", ""} {
		_, err := g.Verify(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}

	anyAud := &Google{Endpoint: srv.URL}
	_, err = anyAud.Verify(ctx, "other-aud")
	assert.NoError(t, err)
}

func TestFacebookVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id,name,email", r.URL.Query().Get("fields"))
		switch r.URL.Query().Get("access_token") {
		case "good":
			io.WriteString(w, `{"id":"fb1","name":"Bob","email":"bob@b.c"}`)
		case "no-email":
			io.WriteString(w, `{"id":"fb1","name":"Bob"}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException"}}`)
		}
	}))
	defer srv.Close()

	f := &Facebook{Endpoint: srv.URL}
	ctx := context.Background()

	id, err := f.Verify(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "fb1", id.Subject)
	assert.Equal(t, models.ProviderFacebook, id.Provider)

	_, err = f.Verify(ctx, "no-email")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.Verify(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorContains(t, err, "Invalid OAuth access token.")
}

func TestVerify_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := (&Google{Endpoint: url}).Verify(context.Background(), "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}
