package service

import (
	"context"
	"errors"
	"time"

	"restaurant-advisor-be/internal/config"
	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/dto"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/internal/repository/specification"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/events"
	pktNats "restaurant-advisor-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	cfg        config.AuthConfig
	auditPub   *pktNats.Publisher
	log        logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, cfg config.AuthConfig, auditPub *pktNats.Publisher, log logger.ILogger) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		cfg:        cfg,
		auditPub:   auditPub,
		log:        log,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, _ := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if existing != nil {
		return nil, errors.New("username already registered")
	}

	role := req.Role
	if role == "" {
		role = constant.RoleGuest
	}
	if _, ok := constant.RoleRanks[role]; !ok {
		return nil, errors.New("unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	if s.auditPub != nil {
		event := events.NewAuditEvent(events.TypeUserRegistered, map[string]interface{}{
			"user_id": user.Id.String(),
			"role":    user.Role,
		})
		if err := s.auditPub.Publish(ctx, event); err != nil {
			s.log.Warn("auth_service", "failed to publish registration event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dto.RegisterResponse{Id: user.Id, Username: user.Username, Role: user.Role}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User: dto.UserResponse{
			Id:       user.Id,
			Username: user.Username,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

func (s *authService) issueToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(s.cfg.TokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
