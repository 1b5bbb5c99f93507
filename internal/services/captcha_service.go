package services

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// CaptchaService hands out small arithmetic questions for the signup form.
// The answer is kept in the session by the caller.
type CaptchaService struct{}

func NewCaptchaService() *CaptchaService {
	return &CaptchaService{}
}

// GenerateMathProblem returns a display string (e.g. "3 + 5") and the integer answer.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	a := rand.IntN(10)
	b := rand.IntN(10)
	if rand.IntN(2) == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	// 保证结果非负
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// Check compares the submitted answer with the expected one.
func (s *CaptchaService) Check(input string, expected int) bool {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	return err == nil && n == expected
}
