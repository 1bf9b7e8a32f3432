package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：集成测试辅助工具
// 这些测试对着真实运行的服务发HTTP请求，覆盖单元测试测不到的部分：
// 路由、中间件、数据库条件UPDATE的真实并发行为。
//
// 运行前提：
// 1. 服务已启动（默认http://localhost:8080）
// 2. 店员操作需要店员Token：先注册一个用户，手动提权
//    （UPDATE users SET role='staff' WHERE email='...'），重新登录后
//    把Access Token放进环境变量BOOKMALL_TEST_STAFF_TOKEN
//    没有这个变量时相关用例自动跳过

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID        uint   `json:"id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Available int    `json:"available"`
}

// CartData 购物车响应数据
type CartData struct {
	ID        uint   `json:"id"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Items     []struct {
		BookID   uint  `json:"book_id"`
		Quantity int   `json:"quantity"`
		Subtotal int64 `json:"subtotal"`
	} `json:"items"`
}

// OrderData 下单响应数据
type OrderData struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
}

// ShippingMethodData 配送方式响应数据
type ShippingMethodData struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Fee           int64  `json:"fee"`
	EstimatedDays int    `json:"estimated_days"`
}

// RequireServer 检查服务是否可达，不可达时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://localhost:8080/ping")
	if err != nil {
		t.Skipf("服务未启动，跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// RequireStaffToken 获取店员Token，未配置时跳过测试
func RequireStaffToken(t *testing.T) string {
	t.Helper()
	token := os.Getenv("BOOKMALL_TEST_STAFF_TOKEN")
	if token == "" {
		t.Skip("未配置BOOKMALL_TEST_STAFF_TOKEN，跳过需要店员权限的用例")
	}
	return token
}

// DoJSON 发送HTTP请求并解析统一响应
func DoJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, "POST", url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, "GET", url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN 生成唯一的测试ISBN
func GenerateTestISBN() string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("978%010d", timestamp%10000000000)
}

// RegisterTestUser 注册测试用户并返回Token
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	t.Helper()

	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}
	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}
	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// PublishTestBook 上架测试图书（店员操作），返回图书ID
func PublishTestBook(t *testing.T, staffToken, title string, priceFen int64, stock int) uint {
	t.Helper()

	bookReq := map[string]interface{}{
		"isbn":          GenerateTestISBN(),
		"title":         title,
		"author":        "测试作者",
		"publisher":     "测试出版社",
		"price":         priceFen,
		"initial_stock": stock,
		"description":   "集成测试用图书",
	}
	resp := PostJSON(t, BaseURL+"/books", bookReq, staffToken)
	require.Equal(t, 0, resp.Code, "图书上架失败: %s", resp.Message)

	var data BookData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析图书响应失败")
	return data.ID
}

// CreateTestShippingMethod 创建测试配送方式（店员操作），返回ID
func CreateTestShippingMethod(t *testing.T, staffToken string, feeFen int64) uint {
	t.Helper()

	req := map[string]interface{}{
		"name":           fmt.Sprintf("测试快递_%d", time.Now().UnixNano()),
		"fee":            feeFen,
		"estimated_days": 3,
	}
	resp := PostJSON(t, BaseURL+"/shipping-methods", req, staffToken)
	require.Equal(t, 0, resp.Code, "创建配送方式失败: %s", resp.Message)

	var data ShippingMethodData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析配送方式响应失败")
	return data.ID
}

// GetBookAvailable 查询图书可售数量
func GetBookAvailable(t *testing.T, bookID uint) int {
	t.Helper()

	resp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	require.Equal(t, 0, resp.Code, "查询图书失败: %s", resp.Message)

	var data BookData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析图书响应失败")
	return data.Available
}

// AddToCart 加购
func AddToCart(t *testing.T, token string, bookID uint, quantity int) {
	t.Helper()

	req := map[string]interface{}{
		"book_id":  bookID,
		"quantity": quantity,
	}
	resp := PostJSON(t, BaseURL+"/cart/items", req, token)
	require.Equal(t, 0, resp.Code, "加购失败: %s", resp.Message)
}

// PlaceOrder 下单，返回统一响应（成功与否由调用方断言）
func PlaceOrder(t *testing.T, token string, shippingMethodID uint) *Response {
	t.Helper()

	req := map[string]interface{}{
		"shipping_method_id": shippingMethodID,
		"address":            "浙江省杭州市西湖区文三路100号",
	}
	return PostJSON(t, BaseURL+"/orders", req, token)
}
