// Package auth содержит HTTP обработчики учетной записи.
package auth

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
	"gonotes/internal/auth/ports/api"
	"gonotes/internal/gateway/app/dto"
	"gonotes/internal/gateway/app/http/middleware"
	"gonotes/pkg/logger"
)

// Страницы.
const (
	ViewLogin          = "login"
	ViewRegister       = "register"
	ViewProfile        = "profile"
	ViewForgotPassword = "forgot-password"
	ViewResetPassword  = "reset-password"
)

// Сообщения, которые видит пользователь.
const (
	MsgRegisterPrompt       = "Please register using your email address"
	MsgLoginPrompt          = "Please login using your email and password"
	MsgCredentialsRequired  = "Email and password are required"
	MsgEmailExists          = "Email already exists"
	MsgInvalidEmail         = "Please enter a valid email address"
	MsgPasswordTooLong      = "Password must not exceed 72 bytes"
	MsgRegisterFailed       = "Could not register due to a server error."
	MsgUserNotFound         = "User not found"
	MsgWrongPassword        = "Wrong password"
	MsgLoginFailed          = "Could not log in due to a server error."
	MsgProfileFailed        = "Server Error: Could not fetch profile."
	MsgPasswordsRequired    = "Current and new password are required"
	MsgCurrentPasswordWrong = "Current password is incorrect"
	MsgPasswordChanged      = "Password changed successfully"
	MsgChangePasswordFailed = "Could not change password due to a server error."
	MsgEmailRequired        = "Email is required"
	MsgResetEmailSent       = "If an account with that email exists, an e-mail has been sent with further instructions."
	MsgResetEmailFailed     = "Could not send reset email due to a server error."
	MsgResetTokenInvalid    = "Password reset token is invalid or has expired."
	MsgPasswordRequired     = "Password is required"
	MsgResetSucceeded       = "Success! Your password has been changed."
	MsgResetFailed          = "Could not reset password due to a server error."
	MsgProfileDeleted       = "Your profile and all associated notes have been deleted."
	MsgDeleteProfileFailed  = "Server Error: Could not delete profile."
)

// Константы для логирования.
const (
	LogHandlerRegister         = "auth handler: register"
	LogHandlerLogin            = "auth handler: login"
	LogHandlerChangePassword   = "auth handler: change password"
	LogHandlerForgotPassword   = "auth handler: forgot password"
	LogHandlerResetPassword    = "auth handler: reset password" // #nosec G101 - not a credential
	LogHandlerDeleteProfile    = "auth handler: delete profile"
	LogHandlerGetProfile       = "auth handler: get profile"
	ErrorFailedToServeRequest  = "failed to serve request"
	ErrorFailedToBindFormInput = "failed to bind form input"
)

// Handler содержит HTTP обработчики учетной записи.
type Handler struct {
	auth   api.AuthUseCase
	users  api.UserUseCase
	cookie middleware.CookieOptions
}

// NewHandler создает новый экземпляр обработчика учетной записи.
func NewHandler(auth api.AuthUseCase, users api.UserUseCase, cookie middleware.CookieOptions) *Handler {
	return &Handler{auth: auth, users: users, cookie: cookie}
}

// page отрисовывает страницу со статусом status. Сессия определяет навигацию в макете.
func page(c fiber.Ctx, status int, view string, binding fiber.Map) error {
	if binding == nil {
		binding = fiber.Map{}
	}
	_, binding["Authenticated"] = middleware.CurrentUser(c)
	return c.Status(status).Render(view, binding)
}

func toLogin(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusFound).To(middleware.LoginPath)
}

func bindForm(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		requestCtx := middleware.RequestContext(c)
		logger.Log(requestCtx).Debug(requestCtx, ErrorFailedToBindFormInput, zap.Error(err))
		return err
	}
	return dto.Validate(out)
}

// validationMessage переводит ошибку проверки учетных данных в текст для формы.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return MsgEmailExists
	case errors.Is(err, entities.ErrInvalidEmail):
		return MsgInvalidEmail
	case errors.Is(err, entities.ErrPasswordTooLong):
		return MsgPasswordTooLong
	default:
		return MsgCredentialsRequired
	}
}

// Landing отправляет вошедших пользователей к заметкам, остальным показывает вход.
func (h *Handler) Landing(c fiber.Ctx) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect().Status(fiber.StatusFound).To("/notes")
	}
	return page(c, fiber.StatusOK, ViewLogin, nil)
}

// RegisterPage показывает форму регистрации.
func (h *Handler) RegisterPage(c fiber.Ctx) error {
	return page(c, fiber.StatusOK, ViewRegister, fiber.Map{"Message": MsgRegisterPrompt})
}

// LoginPage показывает форму входа.
func (h *Handler) LoginPage(c fiber.Ctx) error {
	return page(c, fiber.StatusOK, ViewLogin, nil)
}

// Register обрабатывает форму регистрации. Сессия при регистрации не выдается.
func (h *Handler) Register(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := bindForm(c, &req); err != nil {
		return page(c, fiber.StatusBadRequest, ViewRegister, fiber.Map{"Message": MsgCredentialsRequired})
	}

	if _, err := h.auth.Register(requestCtx, req.Email, req.Password); err != nil {
		if errors.Is(err, entities.ErrValidation) {
			return page(c, fiber.StatusBadRequest, ViewRegister, fiber.Map{"Message": validationMessage(err)})
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return page(c, fiber.StatusInternalServerError, ViewRegister, fiber.Map{"Message": MsgRegisterFailed})
	}

	return page(c, fiber.StatusOK, ViewLogin, fiber.Map{"SuccessMessage": MsgLoginPrompt})
}

// Login проверяет учетные данные, выставляет cookie сессии и ведет к заметкам.
func (h *Handler) Login(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := bindForm(c, &req); err != nil {
		return page(c, fiber.StatusBadRequest, ViewLogin, fiber.Map{"Message": MsgCredentialsRequired})
	}

	session, err := h.auth.Login(requestCtx, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrUserNotFound):
		return page(c, fiber.StatusNotFound, ViewLogin, fiber.Map{"Message": MsgUserNotFound})
	case errors.Is(err, services.ErrUnauthorized):
		return page(c, fiber.StatusUnauthorized, ViewLogin, fiber.Map{"Message": MsgWrongPassword})
	case errors.Is(err, entities.ErrValidation):
		return page(c, fiber.StatusBadRequest, ViewLogin, fiber.Map{"Message": MsgCredentialsRequired})
	default:
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return page(c, fiber.StatusInternalServerError, ViewLogin, fiber.Map{"Message": MsgLoginFailed})
	}

	middleware.SetSessionCookie(c, h.cookie, session.Token, session.ExpiresAt)
	return c.Redirect().Status(fiber.StatusFound).To("/notes")
}

// Logout удаляет cookie сессии.
func (h *Handler) Logout(c fiber.Ctx) error {
	middleware.ClearSessionCookie(c)
	return c.Redirect().Status(fiber.StatusFound).To("/")
}

// Profile показывает профиль с числом заметок.
func (h *Handler) Profile(c fiber.Ctx) error {
	return h.renderProfile(c, fiber.StatusOK, fiber.Map{})
}

func (h *Handler) renderProfile(c fiber.Ctx, status int, binding fiber.Map) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerGetProfile)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return toLogin(c)
	}
	profile, err := h.users.GetUserProfile(requestCtx, user.ID)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString(MsgProfileFailed)
	}

	binding["Profile"] = dto.UserProfile{
		Email:     profile.User.Email,
		CreatedAt: profile.User.CreatedAt,
		NoteCount: profile.NoteCount,
	}
	return page(c, status, ViewProfile, binding)
}

// ChangePassword меняет пароль после проверки текущего.
func (h *Handler) ChangePassword(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerChangePassword)

	var req dto.ChangePasswordRequest
	if err := bindForm(c, &req); err != nil {
		return h.renderProfile(c, fiber.StatusBadRequest, fiber.Map{"Message": MsgPasswordsRequired})
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return toLogin(c)
	}
	err := h.auth.ChangePassword(requestCtx, user.ID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		return h.renderProfile(c, fiber.StatusOK, fiber.Map{"SuccessMessage": MsgPasswordChanged})
	case errors.Is(err, services.ErrUnauthorized):
		return h.renderProfile(c, fiber.StatusUnauthorized, fiber.Map{"Message": MsgCurrentPasswordWrong})
	case errors.Is(err, entities.ErrValidation):
		return h.renderProfile(c, fiber.StatusBadRequest, fiber.Map{"Message": validationMessage(err)})
	default:
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return h.renderProfile(c, fiber.StatusInternalServerError, fiber.Map{"Message": MsgChangePasswordFailed})
	}
}

// ForgotPasswordPage показывает форму запроса сброса пароля.
func (h *Handler) ForgotPasswordPage(c fiber.Ctx) error {
	return page(c, fiber.StatusOK, ViewForgotPassword, nil)
}

// ForgotPassword отправляет письмо со ссылкой сброса. Ответ не зависит от того, есть ли такой адрес.
func (h *Handler) ForgotPassword(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerForgotPassword)

	var req dto.ForgotPasswordRequest
	if err := bindForm(c, &req); err != nil {
		msg := MsgEmailRequired
		if dto.FailedOn(err, "Email", "email") {
			msg = MsgInvalidEmail
		}
		return page(c, fiber.StatusBadRequest, ViewForgotPassword, fiber.Map{"Message": msg})
	}

	if err := h.auth.RequestPasswordReset(requestCtx, req.Email); err != nil {
		if errors.Is(err, entities.ErrValidation) {
			return page(c, fiber.StatusBadRequest, ViewForgotPassword, fiber.Map{"Message": MsgInvalidEmail})
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return page(c, fiber.StatusInternalServerError, ViewForgotPassword, fiber.Map{"Message": MsgResetEmailFailed})
	}

	return page(c, fiber.StatusOK, ViewForgotPassword, fiber.Map{"SuccessMessage": MsgResetEmailSent})
}

// ResetPasswordPage показывает форму нового пароля только для действующего токена.
func (h *Handler) ResetPasswordPage(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	token := c.Params("token")

	if err := h.auth.ValidateResetToken(requestCtx, token); err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredResetToken) {
			return page(c, fiber.StatusBadRequest, ViewForgotPassword, fiber.Map{"Message": MsgResetTokenInvalid})
		}
		logger.Log(requestCtx).Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return page(c, fiber.StatusInternalServerError, ViewForgotPassword, fiber.Map{"Message": MsgResetFailed})
	}

	return page(c, fiber.StatusOK, ViewResetPassword, fiber.Map{"Token": token})
}

// ResetPassword устанавливает новый пароль по токену из письма.
func (h *Handler) ResetPassword(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerResetPassword)

	token := c.Params("token")

	var req dto.ResetPasswordRequest
	if err := bindForm(c, &req); err != nil {
		return page(c, fiber.StatusBadRequest, ViewResetPassword, fiber.Map{"Token": token, "Message": MsgPasswordRequired})
	}

	err := h.auth.ResetPassword(requestCtx, token, req.Password)
	switch {
	case err == nil:
		return page(c, fiber.StatusOK, ViewLogin, fiber.Map{"SuccessMessage": MsgResetSucceeded})
	case errors.Is(err, services.ErrInvalidOrExpiredResetToken):
		return page(c, fiber.StatusBadRequest, ViewForgotPassword, fiber.Map{"Message": MsgResetTokenInvalid})
	case errors.Is(err, entities.ErrValidation):
		return page(c, fiber.StatusBadRequest, ViewResetPassword, fiber.Map{"Token": token, "Message": validationMessage(err)})
	default:
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return page(c, fiber.StatusInternalServerError, ViewForgotPassword, fiber.Map{"Message": MsgResetFailed})
	}
}

// DeleteProfile удаляет заметки пользователя, затем его самого, и завершает сессию.
func (h *Handler) DeleteProfile(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerDeleteProfile)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return toLogin(c)
	}
	if err := h.auth.DeleteAccount(requestCtx, user.ID); err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString(MsgDeleteProfileFailed)
	}

	middleware.ClearSessionCookie(c)
	middleware.SetCurrentUser(c, nil)
	return page(c, fiber.StatusOK, ViewLogin, fiber.Map{"Message": MsgProfileDeleted})
}
