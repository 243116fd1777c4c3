package services

import (
	"errors"
	"time"

	"github.com/campusjam/CampusJam/internal/models"
	"github.com/campusjam/CampusJam/internal/repositories"
	"github.com/campusjam/CampusJam/internal/utils"
	pkgutils "github.com/campusjam/CampusJam/pkg/utils"
)

// AuthUserRepo is the slice of the user repository the auth service needs.
type AuthUserRepo interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	Update(user *models.User) error
	Delete(id uint) error
}

// AuthService 账号注册、登录与个人信息
type AuthService struct {
	userRepo AuthUserRepo
}

func NewAuthService(userRepo AuthUserRepo) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"` // YYYY-MM-DD
	Campus      string `json:"campus"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// UpdateProfileRequest 更新个人信息请求，零值字段不更新
type UpdateProfileRequest struct {
	Name        string `json:"name"`
	Campus      string `json:"campus"`
	Instruments string `json:"instruments"`
	Genres      string `json:"genres"`
	SkillLevel  string `json:"skill_level"`
	Bio         string `json:"bio"`
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if !utils.ValidateName(req.Name) {
		return nil, ErrInvalidName
	}

	email := utils.NormalizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, ErrWeakPassword
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, ErrMissingField
	}

	taken, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		DateOfBirth:  dob,
		Campus:       req.Campus,
	}

	if err := s.userRepo.Create(user); err != nil {
		// 并发注册同一邮箱时唯一索引兜底
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := pkgutils.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Token:  token,
	}, nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(utils.NormalizeEmail(req.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := pkgutils.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Token:  token,
	}, nil
}

func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		if !utils.ValidateName(req.Name) {
			return nil, ErrInvalidName
		}
		user.Name = req.Name
	}
	if req.Campus != "" {
		user.Campus = req.Campus
	}
	if req.Instruments != "" {
		user.Instruments = req.Instruments
	}
	if req.Genres != "" {
		user.Genres = req.Genres
	}
	if req.SkillLevel != "" {
		user.SkillLevel = req.SkillLevel
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount 删除账号，仓储层级联清理其他用户关系集合与 Session 成员表
func (s *AuthService) DeleteAccount(userID uint) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.userRepo.Delete(userID)
}
