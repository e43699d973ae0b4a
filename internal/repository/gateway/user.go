package gateway

import (
	"context"
	"errors"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
	"github.com/ydm-hris/attendance-gateway-go/internal/pkg/gateway"
)

type userGatewayImpl struct {
	client gateway.Caller
}

func NewUserGateway(client gateway.Caller) auth.UserGateway {
	return &userGatewayImpl{client: client}
}

// Login implements auth.UserGateway. A login the gateway refuses comes back
// as an error field on a 2xx response.
func (u *userGatewayImpl) Login(ctx context.Context, email, password string) (string, error) {
	var result gateway.LoginResult
	if err := u.client.Do(ctx, gateway.Login{Email: email, Password: password}, &result); err != nil {
		var appErr *gateway.ApplicationError
		if errors.As(err, &appErr) {
			return "", &auth.CredentialsError{Message: appErr.Message}
		}
		return "", err
	}
	return result.Token, nil
}
