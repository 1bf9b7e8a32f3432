package user

import (
	"time"
)

// Role 用户角色
// 设计说明：角色只分普通顾客与店员（staff）两档，
// 店员可以补货、推进订单状态；不做细粒度权限系统
type Role string

const (
	RoleCustomer Role = "customer" // 顾客
	RoleStaff    Role = "staff"    // 店员（运营）
)

// Valid 检查角色取值是否合法
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleStaff
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 2. 领域实体不依赖GORM tag（infrastructure层的Repository实现时处理映射）
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码；注册入口只能创建顾客角色
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsStaff 是否为店员
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
