package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：用户模块集成测试
// 覆盖注册/登录/登出的完整链路，包括Token黑名单的真实Redis行为

func TestUserRegister(t *testing.T) {
	RequireServer(t)

	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("register_ok")
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "注册测试",
		}, "")

		assert.Equal(t, 0, resp.Code, "注册应该成功: %s", resp.Message)
	})

	t.Run("重复邮箱应失败", func(t *testing.T) {
		email, _ := RegisterTestUser(t, "dup_email")

		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "重复注册",
		}, "")

		assert.NotEqual(t, 0, resp.Code, "重复邮箱应该被拒绝")
		t.Logf("✓ 重复邮箱正确被拒绝: %s", resp.Message)
	})

	t.Run("弱密码应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    GenerateTestEmail("weak_pwd"),
			"password": "12345678", // 纯数字，不含字母
			"nickname": "弱密码测试",
		}, "")

		assert.NotEqual(t, 0, resp.Code, "纯数字密码应该被拒绝")
	})
}

func TestUserLogin(t *testing.T) {
	RequireServer(t)

	email, _ := RegisterTestUser(t, "login_flow")

	t.Run("密码错误应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "WrongPwd1",
		}, "")

		assert.NotEqual(t, 0, resp.Code, "密码错误应该失败")
	})

	t.Run("不存在的邮箱与密码错误返回同样的提示", func(t *testing.T) {
		// 防撞库：两种失败不可区分
		wrongPwd := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "WrongPwd1",
		}, "")
		noUser := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    GenerateTestEmail("ghost"),
			"password": "WrongPwd1",
		}, "")

		assert.Equal(t, wrongPwd.Code, noUser.Code)
		assert.Equal(t, wrongPwd.Message, noUser.Message)
	})
}

func TestUserLogout(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "logout_flow")

	// 登出前可以访问需要登录的接口
	resp := GetJSON(t, BaseURL+"/cart", token)
	require.Equal(t, 0, resp.Code, "登出前应该能访问: %s", resp.Message)

	// 登出
	resp = PostJSON(t, BaseURL+"/users/logout", nil, token)
	require.Equal(t, 0, resp.Code, "登出失败: %s", resp.Message)

	// 登出后Token进入黑名单，再访问被拒绝
	resp = GetJSON(t, BaseURL+"/cart", token)
	assert.NotEqual(t, 0, resp.Code, "登出后的Token应该失效")
	t.Logf("✓ 登出后Token正确失效: %s", resp.Message)
}

func TestTokenRefresh(t *testing.T) {
	RequireServer(t)

	email, _ := RegisterTestUser(t, "refresh_flow")

	loginResp := PostJSON(t, BaseURL+"/users/login", map[string]string{
		"email":    email,
		"password": "Test1234",
	}, "")
	require.Equal(t, 0, loginResp.Code)

	var loginData LoginData
	require.NoError(t, json.Unmarshal(loginResp.Data, &loginData))

	resp := PostJSON(t, BaseURL+"/users/refresh", map[string]string{
		"refresh_token": loginData.RefreshToken,
	}, "")
	assert.Equal(t, 0, resp.Code, "刷新Token应该成功: %s", resp.Message)

	t.Run("用Access Token刷新应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/refresh", map[string]string{
			"refresh_token": loginData.AccessToken,
		}, "")
		assert.NotEqual(t, 0, resp.Code, "Access Token不能当Refresh Token用")
	})
}
