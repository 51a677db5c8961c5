package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
	"github.com/dmitrijs2005/communityhub/internal/portal/remote"
)

var testSecret = []byte("unit-test-secret")

func newAuthFixture(t *testing.T, rs remote.Store) (*fixture, *AuthService) {
	t.Helper()
	fx := newFixture(t, rs)
	auth := NewAuthService(fx.eng, rs, fx.fb, fx.session, testSecret, testLogger())
	return fx, auth
}

func TestRegister_DeterministicIDFromPhone(t *testing.T) {
	_, auth := newAuthFixture(t, nil)
	ctx := context.Background()

	u, err := auth.Register(ctx, "Ana", "0917 123 4567", "Hello!")
	require.NoError(t, err)
	assert.Equal(t, "user_9171234567", u.ID)
	assert.Equal(t, "+639171234567", u.Phone)
	assert.Equal(t, models.RoleAdmin, u.Role, "first member administers the community")
	assert.Contains(t, u.Avatar, u.ID)

	// the session opened with registration
	got, err := auth.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	u2, err := auth.Register(ctx, "Ben", "0918 000 1111", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u2.Role)
}

func TestRegister_DuplicatePhoneRejectedBeforeWrite(t *testing.T) {
	fx, auth := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Ana", "09171234567", "")
	require.NoError(t, err)

	// same phone, different formatting
	_, err = auth.Register(ctx, "Impostor", "+63 917-123-4567", "")
	require.ErrorIs(t, err, common.ErrDuplicateIdentity)

	users := fx.eng.State().Get(models.CollectionUsers)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0]["name"])
}

func TestRegister_RemoteDuplicateRejectedBeforeWrite(t *testing.T) {
	rs := newFakeStore()
	doc, err := models.ToDocument(models.User{ID: "user_9171234567", Name: "Ana", Role: models.RoleUser})
	require.NoError(t, err)
	rs.seed(models.CollectionUsers, doc)

	fx, auth := newAuthFixture(t, rs)
	ctx := context.Background()

	// the local snapshot is empty, but the phone is taken remotely
	_, err = auth.Register(ctx, "Impostor", "09171234567", "")
	require.ErrorIs(t, err, common.ErrDuplicateIdentity)

	assert.Empty(t, fx.eng.State().Get(models.CollectionUsers))
	fx.eng.Flush()
	assert.Zero(t, rs.setCount(), "no write of any kind happened")
}

func TestRegister_InvalidInput(t *testing.T) {
	_, auth := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Ana", "---", "")
	assert.Error(t, err)
	_, err = auth.Register(ctx, "", "09171234567", "")
	assert.Error(t, err)
}

func TestLogin_RestoresAccountFromRemote(t *testing.T) {
	rs := newFakeStore()
	doc, err := models.ToDocument(models.User{ID: "user_9171234567", Name: "Ana", Role: models.RoleUser})
	require.NoError(t, err)
	rs.seed(models.CollectionUsers, doc)

	fx, auth := newAuthFixture(t, rs)
	ctx := context.Background()

	u, err := auth.Login(ctx, "0917-123-4567")
	require.NoError(t, err)
	assert.Equal(t, "user_9171234567", u.ID)
	assert.Equal(t, "Ana", u.Name)

	// the restored record is cached locally for the next start
	assert.NotNil(t, fx.eng.State().Find(models.CollectionUsers, u.ID))

	got, err := auth.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestLogin_UnknownPhone(t *testing.T) {
	_, auth := newAuthFixture(t, newFakeStore())
	_, err := auth.Login(context.Background(), "09990000000")
	assert.ErrorIs(t, err, common.ErrIdentityNotFound)
}

func TestLogin_UnknownPhoneLocalOnly(t *testing.T) {
	_, auth := newAuthFixture(t, nil)
	_, err := auth.Login(context.Background(), "09990000000")
	assert.ErrorIs(t, err, common.ErrIdentityNotFound)
}

func TestCurrentUser_NoSession(t *testing.T) {
	_, auth := newAuthFixture(t, nil)
	_, err := auth.CurrentUser()
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestLogout_DropsSession(t *testing.T) {
	_, auth := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Ana", "09171234567", "")
	require.NoError(t, err)

	require.NoError(t, auth.Logout())
	_, err = auth.CurrentUser()
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestCurrentUser_TamperedToken(t *testing.T) {
	_, auth := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Ana", "09171234567", "")
	require.NoError(t, err)

	require.NoError(t, auth.session.Set(common.SessionTokenKey, []byte("not-a-jwt")))
	_, err = auth.CurrentUser()
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestNewOTP_SixDigits(t *testing.T) {
	for i := 0; i < 20; i++ {
		code := NewOTP()
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
	}
}
