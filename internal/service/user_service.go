package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go-user-admin/internal/model"
	"go-user-admin/internal/repository"
	"go-user-admin/pkg/apierror"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

type UserService struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// Register is the public self-service path; it can only create regular
// accounts. Admin accounts come from Create, which sits behind the admin gate.
func (s *UserService) Register(ctx context.Context, username string, password string) (model.User, error) {
	return s.create(ctx, username, password, false)
}

func (s *UserService) Create(ctx context.Context, username string, password string, isAdmin bool) (model.User, error) {
	return s.create(ctx, username, password, isAdmin)
}

func (s *UserService) create(ctx context.Context, username string, password string, isAdmin bool) (model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return model.User{}, err
	}
	if err := validatePassword(password); err != nil {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) UpdateUsername(ctx context.Context, id int64, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return model.User{}, err
	}

	if err := s.users.UpdateUsername(ctx, id, username); err != nil {
		return model.User{}, err
	}

	return s.users.FindByID(ctx, id)
}

func (s *UserService) ChangePassword(ctx context.Context, id int64, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, id, hash)
}

func (s *UserService) SetRole(ctx context.Context, id int64, isAdmin bool) (model.User, error) {
	if err := s.users.SetAdmin(ctx, id, isAdmin); err != nil {
		return model.User{}, err
	}

	return s.users.FindByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// EnsureInitialAdmin seeds the configured admin account on first start so a
// fresh deployment is never without a privileged login. Existing accounts are
// left untouched.
func (s *UserService) EnsureInitialAdmin(ctx context.Context, username string, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		slog.Info("initial admin seeding skipped; credentials not configured")
		return nil
	}

	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if apiErr, ok := apierror.From(err); !ok || apiErr.HTTPStatus != http.StatusNotFound {
		return fmt.Errorf("check initial admin: %w", err)
	}

	if _, err := s.create(ctx, username, password, true); err != nil {
		return fmt.Errorf("create initial admin: %w", err)
	}

	slog.Info("initial admin user created", "username", username)
	return nil
}

// ImportCSV bulk-creates users from rows of username,password[,is_admin].
// A header row is tolerated, duplicates are counted as skipped, and invalid
// rows are reported by line number without aborting the rest of the file.
func (s *UserService) ImportCSV(ctx context.Context, r io.Reader) (model.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := model.ImportResult{}
	line := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Failed = append(result.Failed, model.ImportRowFailure{Line: line, Reason: "unparseable row"})
			continue
		}

		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "username") {
			continue
		}

		if len(record) < 2 {
			result.Failed = append(result.Failed, model.ImportRowFailure{Line: line, Reason: "expected username,password[,is_admin]"})
			continue
		}

		username := strings.TrimSpace(record[0])
		password := record[1]
		isAdmin := false
		if len(record) >= 3 {
			parsed, err := strconv.ParseBool(strings.TrimSpace(record[2]))
			if err != nil {
				result.Failed = append(result.Failed, model.ImportRowFailure{Line: line, Reason: "is_admin must be a boolean"})
				continue
			}
			isAdmin = parsed
		}

		_, err = s.create(ctx, username, password, isAdmin)
		switch {
		case err == nil:
			result.Created++
		case isConflict(err):
			result.Skipped++
		default:
			if apiErr, ok := apierror.From(err); ok {
				result.Failed = append(result.Failed, model.ImportRowFailure{Line: line, Reason: apiErr.Message})
			} else {
				return result, err
			}
		}
	}

	return result, nil
}

func isConflict(err error) bool {
	apiErr, ok := apierror.From(err)
	return ok && apiErr.HTTPStatus == http.StatusConflict
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength {
		return apierror.BadRequest(fmt.Sprintf("username must be at least %d characters", minUsernameLength), "username")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apierror.BadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}
	return nil
}
