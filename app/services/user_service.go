package services

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/notifications"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

const (
	VerificationTTL  = 24 * time.Hour
	PasswordResetTTL = time.Hour
)

var (
	selfFields  = []string{"name", "image", "profession", "gender", "address", "phone", "bio"}
	adminFields = append(append([]string{}, selfFields...), "role", "status", "isVerified", "email")
)

// MutableUserFields lists the profile fields an actor with role may change.
func MutableUserFields(role string) []string {
	if role == models.RoleAdmin {
		return adminFields
	}
	return selfFields
}

func allowed(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

type RegisterInput struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

// AdminCreateInput is the body of POST /users.
type AdminCreateInput struct {
	RegisterInput
	Role   string `json:"role"   validate:"nullable,in=user,admin"`
	Status string `json:"status" validate:"nullable,in=Active,Inactive"`
}

// UserUpdate carries every editable field; which ones apply depends on
// MutableUserFields for the acting role.
type UserUpdate struct {
	Name       *string `json:"name"       validate:"nullable,max=100"`
	Email      *string `json:"email"      validate:"nullable,email"`
	Image      *string `json:"image"`
	Profession *string `json:"profession"`
	Gender     *string `json:"gender"     validate:"nullable,in=male,female,other"`
	Address    *string `json:"address"`
	Phone      *string `json:"phone"`
	Bio        *string `json:"bio"`
	Role       *string `json:"role"       validate:"nullable,in=user,admin"`
	Status     *string `json:"status"     validate:"nullable,in=Active,Inactive"`
	IsVerified *bool   `json:"isVerified"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

type UserService struct {
	users    repositories.UserRepository
	signer   *auth.Signer
	notifier Notifier
	now      Clock
}

func NewUserService(users repositories.UserRepository, signer *auth.Signer, notifier Notifier) *UserService {
	return &UserService{users: users, signer: signer, notifier: notifier, now: nowUTC}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// emailTaken reports whether another account already uses email.
func (s *UserService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case apperr.KindOf(err) == apperr.KindNotFound:
		return false, nil
	}
	return false, err
}

func (s *UserService) newUser(ctx context.Context, in RegisterInput, role, status string, verified bool) (*models.User, error) {
	email := normalizeEmail(in.Email)
	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("User already exists")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Registration failed", err)
	}
	now := s.now()
	u := &models.User{
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		Password:   hash,
		Role:       role,
		Status:     status,
		IsVerified: verified,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if !verified {
		if err := s.issueVerification(u); err != nil {
			return nil, err
		}
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) issueVerification(u *models.User) error {
	token, err := auth.RandomToken()
	if err != nil {
		return apperr.Internal("Could not issue verification token", err)
	}
	exp := s.now().Add(VerificationTTL)
	u.VerificationToken = token
	u.VerificationTokenExpires = &exp
	return nil
}

// Register creates an unverified user account, emails a verification link
// and signs the caller in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	u, err := s.newUser(ctx, in, models.RoleUser, models.StatusActive, false)
	if err != nil {
		return nil, err
	}

	s.notifier.SendAsync(ctx, u.Email, notifications.WelcomeEmail{Name: u.Name})
	s.notifier.SendAsync(ctx, u.Email, notifications.VerifyEmail{Name: u.Name, Token: u.VerificationToken})

	token, err := s.signer.Generate(u.ID.Hex())
	if err != nil {
		return nil, apperr.Internal("Registration failed", err)
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID.Hex())
	return &AuthResult{
		Message: "User registered successfully. Please check your email for verification.",
		User:    public(u),
		Token:   token,
	}, nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	invalid := apperr.Unauthenticated(apperr.ReasonInvalid, "Invalid credentials")

	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, invalid
		}
		return nil, err
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return nil, invalid
	}
	if u.Status == models.StatusInactive {
		return nil, apperr.Forbidden("Account is inactive")
	}

	token, err := s.signer.Generate(u.ID.Hex())
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	return &AuthResult{Message: "Login successful", User: public(u), Token: token}, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	invalid := apperr.Validation("Invalid or expired verification token")
	if token == "" {
		return apperr.Validation("Verification token is required")
	}
	u, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return invalid
		}
		return err
	}
	if u.VerificationTokenExpires == nil || !u.VerificationTokenExpires.After(s.now()) {
		return invalid
	}
	u.IsVerified = true
	u.VerificationToken = ""
	u.VerificationTokenExpires = nil
	u.UpdatedAt = s.now()
	return s.users.Save(ctx, u)
}

func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperr.Validation("Email is already verified")
	}
	if err := s.issueVerification(u); err != nil {
		return err
	}
	u.UpdatedAt = s.now()
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}
	s.notifier.SendAsync(ctx, u.Email, notifications.VerifyEmail{Name: u.Name, Token: u.VerificationToken})
	return nil
}

// ForgotPassword issues a one-hour reset token. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			logger.WithCtx(ctx).Info("password reset requested for unknown email")
			return nil
		}
		return err
	}
	token, err := auth.RandomToken()
	if err != nil {
		return apperr.Internal("Failed to send password reset email", err)
	}
	exp := s.now().Add(PasswordResetTTL)
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &exp
	u.UpdatedAt = s.now()
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}
	s.notifier.SendAsync(ctx, u.Email, notifications.PasswordReset{Name: u.Name, Token: token})
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := check(in); err != nil {
		return err
	}
	invalid := apperr.Validation("Invalid or expired reset token")
	u, err := s.users.FindByResetToken(ctx, in.Token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return invalid
		}
		return err
	}
	if u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(s.now()) {
		return invalid
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal("Password reset failed", err)
	}
	u.Password = hash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	u.UpdatedAt = s.now()
	return s.users.Save(ctx, u)
}

func (s *UserService) Profile(ctx context.Context, caller *models.User) (*models.User, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated(apperr.ReasonMissing, "Authentication required")
	}
	return s.users.FindIdentity(ctx, caller.ID)
}

func (s *UserService) UpdateProfile(ctx context.Context, caller *models.User, in UserUpdate) (*models.User, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated(apperr.ReasonMissing, "Authentication required")
	}
	return s.update(ctx, caller.ID.Hex(), in, MutableUserFields(models.RoleUser))
}

func (s *UserService) ChangePassword(ctx context.Context, caller *models.User, in ChangePasswordInput) error {
	if caller == nil {
		return apperr.Unauthenticated(apperr.ReasonMissing, "Authentication required")
	}
	if err := check(in); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.Password, in.CurrentPassword) {
		return apperr.Validation("Current password is incorrect")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal("Password change failed", err)
	}
	u.Password = hash
	u.UpdatedAt = s.now()
	return s.users.Save(ctx, u)
}

// ---- admin ----

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	if !models.ValidRole(role) {
		return nil, apperr.Validation("Invalid role")
	}
	return s.users.ListByRole(ctx, role)
}

func (s *UserService) Get(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.users.FindIdentity(ctx, id)
}

// Create adds a pre-verified account. No emails are sent.
func (s *UserService) Create(ctx context.Context, in AdminCreateInput) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := check(in.RegisterInput); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	status := in.Status
	if status == "" {
		status = models.StatusActive
	}
	u, err := s.newUser(ctx, in.RegisterInput, role, status, true)
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("user created by admin", "user_id", u.ID.Hex(), "role", role)
	return public(u), nil
}

func (s *UserService) Update(ctx context.Context, rawID string, in UserUpdate) (*models.User, error) {
	return s.update(ctx, rawID, in, MutableUserFields(models.RoleAdmin))
}

func (s *UserService) Delete(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) update(ctx context.Context, rawID string, in UserUpdate, fields []string) (*models.User, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := func(name string, dst *string, v *string) {
		if v != nil && allowed(fields, name) {
			*dst = strings.TrimSpace(*v)
		}
	}
	set("name", &u.Name, in.Name)
	set("image", &u.Image, in.Image)
	set("profession", &u.Profession, in.Profession)
	set("gender", &u.Gender, in.Gender)
	set("address", &u.Address, in.Address)
	set("phone", &u.Phone, in.Phone)
	set("bio", &u.Bio, in.Bio)
	set("role", &u.Role, in.Role)
	set("status", &u.Status, in.Status)
	if in.IsVerified != nil && allowed(fields, "isVerified") {
		u.IsVerified = *in.IsVerified
	}
	if in.Email != nil && allowed(fields, "email") {
		email := normalizeEmail(*in.Email)
		if email != u.Email {
			taken, err := s.emailTaken(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Conflict("User already exists")
			}
			u.Email = email
		}
	}
	if u.Name == "" {
		return nil, apperr.ValidationFields("Validation failed", map[string]string{"name": "The name field is required."})
	}

	u.UpdatedAt = s.now()
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return public(u), nil
}

// public returns a copy of u with credentials removed.
func public(u *models.User) *models.User {
	cp := *u
	cp.Password = ""
	cp.VerificationToken = ""
	cp.VerificationTokenExpires = nil
	cp.ResetPasswordToken = ""
	cp.ResetPasswordExpires = nil
	return &cp
}
