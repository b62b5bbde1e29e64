package tg

import (
	"errors"
	"fmt"
	"time"

	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

var errTransportClosed = errors.New("tdlib: transport closed")

// qrAuthorizer проводит вход только по QR: номер телефона и коды не поддерживаются.
// Реализует client.AuthorizationStateHandler.
type qrAuthorizer struct {
	t      *Transport
	params *client.SetTdlibParametersRequest
	poll   time.Duration
}

func (a *qrAuthorizer) Handle(c *client.Client, state client.AuthorizationState) error {
	a.t.attach(c)
	if a.t.isClosed() {
		return errTransportClosed
	}

	switch st := state.(type) {
	case *client.AuthorizationStateWaitTdlibParameters:
		_, err := c.SetTdlibParameters(a.params)
		return err

	case *client.AuthorizationStateWaitPhoneNumber:
		a.t.log.Info("requesting QR code authentication")
		_, err := c.RequestQrCodeAuthentication(&client.RequestQrCodeAuthenticationRequest{})
		return err

	case *client.AuthorizationStateWaitOtherDeviceConfirmation:
		a.t.emit(domain.Event{Type: domain.EventQR, Payload: st.Link})
		return a.waitChange(c, st.Link)

	case *client.AuthorizationStateReady:
		return nil

	case *client.AuthorizationStateLoggingOut, *client.AuthorizationStateClosing, *client.AuthorizationStateClosed:
		return fmt.Errorf("%w: %s", errTransportClosed, state.AuthorizationStateType())

	default:
		reason := "unsupported authorization state: " + state.AuthorizationStateType()
		a.t.emit(domain.Event{Type: domain.EventAuthFailure, Payload: reason})
		return errors.New(reason)
	}
}

func (a *qrAuthorizer) Close() {}

// waitChange держит QR-шаг, пока состояние или ссылка не сменятся.
// Иначе цикл авторизации TDLib крутится вхолостую.
func (a *qrAuthorizer) waitChange(c *client.Client, link string) error {
	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()

	for {
		select {
		case <-a.t.done:
			return errTransportClosed
		case <-ticker.C:
		}

		state, err := c.GetAuthorizationState()
		if err != nil {
			return err
		}
		if st, ok := state.(*client.AuthorizationStateWaitOtherDeviceConfirmation); ok && st.Link == link {
			continue
		}
		return nil
	}
}
