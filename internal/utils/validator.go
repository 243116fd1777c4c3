package utils

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MaxMessageLength 私信与群聊消息内容的统一上限
const MaxMessageLength = 2000

// MaxReasonLength 举报理由上限
const MaxReasonLength = 1000

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// HashPassword 使用 bcrypt 对密码进行哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword 验证密码
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidatePassword 验证密码强度（至少8个字符）
func ValidatePassword(password string) bool {
	return len(password) >= 8
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail lowercases and trims an email address. Emails are unique
// case-insensitively, so every store and lookup goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateName 验证用户显示名（1-80个字符，去除首尾空白后非空）
func ValidateName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return len(trimmed) > 0 && len(trimmed) <= 80
}

// ValidateMessageContent 验证消息内容：去除首尾空白后非空且不超过上限
func ValidateMessageContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	return len(trimmed) > 0 && len(trimmed) <= MaxMessageLength
}
