package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

func newTestManager() *Manager {
	return NewManager("test-secret", 2*time.Hour, 7*24*time.Hour)
}

// TestGenerateAndParse 生成后解析，Claims应原样还原
func TestGenerateAndParse(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateToken(42, "alice@example.com", "Alice", RoleCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(7200), pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Nickname)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.False(t, claims.IsStaff())
}

// TestStaffRoleClaim 角色随Token传递，店员判断只看Role字段
func TestStaffRoleClaim(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateToken(7, "staff@example.com", "店长", RoleStaff)
	require.NoError(t, err)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsStaff())

	// Refresh Token也携带角色：刷新出的新Access Token不能丢权限
	refreshClaims, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, refreshClaims.Role)
}

// TestParseTamperedToken 换密钥签名的Token必须拒绝
func TestParseTamperedToken(t *testing.T) {
	m := newTestManager()
	other := NewManager("another-secret", 2*time.Hour, 7*24*time.Hour)

	pair, err := other.GenerateToken(1, "a@b.com", "A", RoleCustomer)
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = m.ParseToken("not-a-jwt-at-all")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

// TestParseExpiredToken 过期Token返回专门的错误码，前端据此走刷新流程
func TestParseExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, 7*24*time.Hour)

	pair, err := m.GenerateToken(1, "a@b.com", "A", RoleCustomer)
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

// TestRefreshAccessToken 刷新出的新Token保留用户身份与角色
func TestRefreshAccessToken(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateToken(42, "alice@example.com", "Alice", RoleStaff)
	require.NoError(t, err)

	newAccess, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ParseToken(newAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, RoleStaff, claims.Role)
}
