package pkg

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidEmail = errors.New("invalid email")

// Resolver 为 net.Resolver 的子集，测试中可替换
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type EmailValidator struct {
	validate            *validator.Validate
	resolver            Resolver
	checkDeliverability bool
}

func NewEmailValidator(checkDeliverability bool, resolver Resolver) *EmailValidator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &EmailValidator{
		validate:            validator.New(),
		resolver:            resolver,
		checkDeliverability: checkDeliverability,
	}
}

// Validate 返回规范化后的邮箱（域名小写）
func (v *EmailValidator) Validate(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := v.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], strings.ToLower(email[at+1:])
	normalized := local + "@" + domain

	if !v.checkDeliverability {
		return normalized, nil
	}

	// 没有 MX 时退回 A/AAAA 记录
	if mx, err := v.resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return normalized, nil
	}
	if hosts, err := v.resolver.LookupHost(ctx, domain); err == nil && len(hosts) > 0 {
		return normalized, nil
	}
	return "", fmt.Errorf("%w: domain %s does not accept email", ErrInvalidEmail, domain)
}
