package notifxsmtp

import (
	"net/http"

	"github.com/Abraxas-365/mosaic/pkg/errx"
)

var smtpErrors = errx.NewRegistry("NOTIFX_SMTP")

var (
	ErrDial       = smtpErrors.Register("DIAL", errx.TypeExternal, http.StatusBadGateway, "SMTP connection failed")
	ErrAuth       = smtpErrors.Register("AUTH", errx.TypeExternal, http.StatusBadGateway, "SMTP authentication failed")
	ErrSendFailed = smtpErrors.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "SMTP send failed")
)
