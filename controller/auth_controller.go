package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/syphaxalili/b2connect-store-sub001/kafka"
	"github.com/syphaxalili/b2connect-store-sub001/model"
)

type AuthController struct {
	DB        *gorm.DB
	Producer  *kafka.Producer
	JWTSecret string
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	if body.Email == "" || len(body.Password) < 8 {
		return c.Status(400).JSON(fiber.Map{"error": "email and a password of at least 8 characters are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	user := model.User{
		Email:     body.Email,
		Password:  string(hash),
		Role:      "user",
		CreatedAt: time.Now(),
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(400).JSON(fiber.Map{"error": "email already registered"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "registration failed"})
	}

	return c.Status(201).JSON(fiber.Map{"id": user.ID, "email": user.Email})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}

	var user model.User
	if err := ac.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)) != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ac.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"token": signed})
}

func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}

	// Same response whether the email exists or not.
	resp := fiber.Map{"message": "if the email exists, a reset link was sent"}

	var user model.User
	if err := ac.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		return c.JSON(resp)
	}

	token := uuid.NewString()
	expires := time.Now().Add(time.Hour)
	err := ac.DB.Model(&user).Updates(map[string]interface{}{
		"reset_token":      token,
		"reset_expires_at": expires,
	}).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	go ac.Producer.PublishPasswordResetEvent(map[string]interface{}{
		"event_type": "user.password.reset",
		"data": map[string]interface{}{
			"email": user.Email,
			"token": token,
		},
	})

	return c.JSON(resp)
}

func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	if body.Token == "" || len(body.Password) < 8 {
		return c.Status(400).JSON(fiber.Map{"error": "token and a password of at least 8 characters are required"})
	}

	var user model.User
	if err := ac.DB.Where("reset_token = ?", body.Token).First(&user).Error; err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid or expired token"})
	}
	if user.ResetExpiresAt == nil || user.ResetExpiresAt.Before(time.Now()) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid or expired token"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	err = ac.DB.Model(&user).Updates(map[string]interface{}{
		"password":         string(hash),
		"reset_token":      nil,
		"reset_expires_at": nil,
	}).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"message": "password updated"})
}
