package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"ai-research-assistant-be/internal/dto"
	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/repository/specification"
	"ai-research-assistant-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// IOAuthService links GitHub accounts. The stored token powers the
// repository retrieval source; the callback also signs the user in.
type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
	ConnectionStatus(ctx context.Context, userId uuid.UUID) (*dto.GitHubConnectionResponse, error)
	Disconnect(ctx context.Context, userId uuid.UUID) error
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	githubConf *oauth2.Config
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),
		Scopes:       []string{"read:user", "user:email", "repo"},
		Endpoint:     githuboauth.Endpoint,
	}

	return &oauthService{
		uowFactory: uowFactory,
		githubConf: conf,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != "github" {
		return "", errors.New("unsupported provider")
	}

	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	return s.githubConf.AuthCodeURL(state), nil
}

type githubUserInfo struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != "github" {
		return nil, errors.New("unsupported provider")
	}

	token, err := s.githubConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	ghUser, err := s.fetchGitHubUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if ghUser.Email == "" {
		// GitHub hides the primary email unless requested separately.
		email, err := s.fetchPrimaryEmail(ctx, token)
		if err != nil {
			return nil, err
		}
		ghUser.Email = email
	}
	if ghUser.Email == "" {
		return nil, errors.New("github account has no accessible email")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: ghUser.Email})
	if err != nil {
		return nil, err
	}

	if user == nil {
		fullName := ghUser.Name
		if fullName == "" {
			fullName = ghUser.Login
		}
		user = &entity.User{
			Id:        uuid.New(),
			Email:     ghUser.Email,
			FullName:  fullName,
			Role:      entity.UserRoleUser,
			Status:    entity.UserStatusActive,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
		log.Printf("[INFO] New user created via GitHub OAuth: %s", user.Id)
	}

	conn := &entity.GitHubConnection{
		Id:          uuid.New(),
		UserId:      user.Id,
		GitHubLogin: ghUser.Login,
		AccessToken: token.AccessToken,
		Scopes:      strings.Join(s.githubConf.Scopes, ","),
		CreatedAt:   time.Now(),
	}
	if err := uow.GitHubConnectionRepository().Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to store github connection: %w", err)
	}

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := jwtToken.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signed,
		User: dto.UserDTO{
			Id:       user.Id,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     string(user.Role),
		},
	}, nil
}

func (s *oauthService) ConnectionStatus(ctx context.Context, userId uuid.UUID) (*dto.GitHubConnectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conn, err := uow.GitHubConnectionRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return &dto.GitHubConnectionResponse{Connected: false}, nil
	}
	return &dto.GitHubConnectionResponse{
		Connected:   true,
		GitHubLogin: conn.GitHubLogin,
	}, nil
}

func (s *oauthService) Disconnect(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.GitHubConnectionRepository().DeleteByUserId(ctx, userId)
}

func (s *oauthService) fetchGitHubUser(ctx context.Context, token *oauth2.Token) (*githubUserInfo, error) {
	body, err := s.getAuthenticated(ctx, token, "https://api.github.com/user")
	if err != nil {
		return nil, err
	}

	var user githubUserInfo
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse github user: %w", err)
	}
	return &user, nil
}

func (s *oauthService) fetchPrimaryEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	body, err := s.getAuthenticated(ctx, token, "https://api.github.com/user/emails")
	if err != nil {
		return "", err
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", fmt.Errorf("failed to parse github emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func (s *oauthService) getAuthenticated(ctx context.Context, token *oauth2.Token, url string) ([]byte, error) {
	client := s.githubConf.Client(ctx, token)
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("github api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
