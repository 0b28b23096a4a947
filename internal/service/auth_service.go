package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/roomescape-club/reservation-service/internal/models"
	"github.com/roomescape-club/reservation-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims carried by the access token. The booking engine never parses these
// itself; the auth middleware turns them into an Actor.
type Claims struct {
	MemberID uint   `json:"member_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*models.Member, error)
	Login(ctx context.Context, email, password string) (string, error)
	// EnsureAdmin creates the bootstrap admin account if it does not exist.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	members  repository.MemberRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(members repository.MemberRepository, secret []byte, tokenTTL time.Duration) AuthService {
	return &authService{members: members, secret: secret, tokenTTL: tokenTTL}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*models.Member, error) {
	if _, err := s.members.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	member := &models.Member{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleMember,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := Claims{
		MemberID: member.ID,
		Role:     string(member.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	if _, err := s.members.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.members.Create(ctx, &models.Member{
		Name:         "admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
}
