package email

import (
	"crypto/tls"
	"net"
	"net/smtp"
	"strconv"
)

// checkSMTPConnectivity opens an SMTP conversation in the configured mode
// and hangs up. No mail is sent; this only proves the relay is reachable
// and speaks TLS.
func (c *Channel) checkSMTPConnectivity() bool {
	addr := net.JoinHostPort(c.cfg.SMTPServer, strconv.Itoa(c.cfg.SMTPPort))
	dialer := &net.Dialer{Timeout: c.cfg.Timeout}

	if c.cfg.SMTPStartTLS {
		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			return false
		}
		defer conn.Close()

		cl, err := smtp.NewClient(conn, c.cfg.SMTPServer)
		if err != nil {
			return false
		}
		defer cl.Close()

		if err := cl.StartTLS(&tls.Config{ServerName: c.cfg.SMTPServer}); err != nil {
			return false
		}
		return cl.Quit() == nil
	}

	// Implicit TLS (typically port 465)
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: c.cfg.SMTPServer})
	if err != nil {
		return false
	}
	defer conn.Close()

	cl, err := smtp.NewClient(conn, c.cfg.SMTPServer)
	if err != nil {
		return false
	}
	defer cl.Close()

	return cl.Quit() == nil
}
