package handlers

import (
	"errors"
	"net/http"

	"postboard/internal/forms"
	"postboard/internal/logger"
	"postboard/internal/middleware"
	"postboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const captchaKey = "captcha_answer"

type AuthHandler struct {
	auth           *services.AuthService
	captchaService *services.CaptchaService
	log            *logger.Logger
}

func NewAuthHandler(auth *services.AuthService, captcha *services.CaptchaService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:           auth,
		captchaService: captcha,
		log:            log,
	}
}

// renderSignup 生成新的验证码题目并渲染注册页
func (h *AuthHandler) renderSignup(c *gin.Context, form *forms.SignupForm, errs map[string]string) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set(captchaKey, answer)
	if err := session.Save(); err != nil {
		ServerError(c, h.log, "auth", err)
		return
	}
	form.Password1, form.Password2, form.Captcha = "", "", ""
	Render(c, http.StatusOK, "auth/signup.html", gin.H{
		"Title":   "Sign up",
		"Form":    form,
		"Errors":  errs,
		"Captcha": question,
	})
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	h.renderSignup(c, &forms.SignupForm{}, nil)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var form forms.SignupForm
	if !bindForm(c, h.log, "auth", &form) {
		return
	}

	session := sessions.Default(c)
	expected, ok := session.Get(captchaKey).(int)
	// Clear captcha after use
	session.Delete(captchaKey)
	if !ok || !h.captchaService.Check(form.Captcha, expected) {
		h.renderSignup(c, &form, map[string]string{"captcha": forms.CaptchaMessage})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &form)
	if errs, ok := fieldErrors(err); ok {
		h.renderSignup(c, &form, errs)
		return
	}
	if err != nil {
		ServerError(c, h.log, "auth", err)
		return
	}

	session.Set(middleware.SessionKey, user.ID)
	if err := session.Save(); err != nil {
		ServerError(c, h.log, "auth", err)
		return
	}
	h.log.Info("auth", "New user registered: "+user.Username)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Title": "Log in",
		"Form":  &forms.LoginForm{},
		"Next":  c.Query("next"),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	if !bindForm(c, h.log, "auth", &form) {
		return
	}
	next := c.PostForm("next")

	user, err := h.auth.Authenticate(c.Request.Context(), &form)
	if err != nil {
		errs, ok := fieldErrors(err)
		switch {
		case ok:
		case errors.Is(err, services.ErrInvalidCredentials):
			errs = map[string]string{"__all__": forms.LoginMessage}
		default:
			ServerError(c, h.log, "auth", err)
			return
		}
		form.Password = ""
		Render(c, http.StatusOK, "auth/login.html", gin.H{
			"Title":  "Log in",
			"Form":   &form,
			"Errors": errs,
			"Next":   next,
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionKey, user.ID)
	if err := session.Save(); err != nil {
		ServerError(c, h.log, "auth", err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		ServerError(c, h.log, "auth", err)
		return
	}
	// 让本次渲染不再显示已登录状态
	c.Set(middleware.CheckUserKey, nil)
	Render(c, http.StatusOK, "auth/logged_out.html", gin.H{"Title": "Logged out"})
}
