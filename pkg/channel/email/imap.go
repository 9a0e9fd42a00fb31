package email

import (
	"crypto/tls"
	"fmt"
	"io"
	"strconv"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// connectIMAP dials and authenticates an IMAP session per the configured
// mode: STARTTLS on a cleartext port, or implicit TLS otherwise.
func (c *Channel) connectIMAP() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.cfg.IMAPServer, c.cfg.IMAPPort)

	var cl *client.Client
	var err error
	if c.cfg.IMAPStartTLS {
		cl, err = client.Dial(addr)
		if err == nil {
			err = cl.StartTLS(&tls.Config{ServerName: c.cfg.IMAPServer})
		}
	} else {
		cl, err = client.DialTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to email server: %w", err)
	}

	cl.Timeout = c.cfg.Timeout

	login, password := c.cfg.IMAPCredentials()
	if err := cl.Login(login, password); err != nil {
		cl.Logout()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	return cl, nil
}

// pollUnseen runs one full blocking poll cycle: connect, select, search
// unseen, fetch each hit, mark it seen, log out. Any protocol failure aborts
// the whole cycle; per-message parse failures only skip that message.
func (c *Channel) pollUnseen() ([]inboundEmail, error) {
	cl, err := c.connectIMAP()
	if err != nil {
		return nil, err
	}
	defer cl.Logout()

	if _, err := cl.Select(c.cfg.InboxFolder, false); err != nil {
		return nil, fmt.Errorf("failed to select folder %s: %w", c.cfg.InboxFolder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	seqNums, err := cl.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var out []inboundEmail
	for _, num := range seqNums {
		raws, err := c.fetchRaw(cl, num)
		if err != nil {
			return nil, err
		}
		for _, raw := range raws {
			inbound, err := parseInbound(strconv.FormatUint(uint64(num), 10), raw)
			if err != nil {
				c.logger.Debug().Uint32("seq", num).Err(err).Msg("skipping unparseable message")
				continue
			}
			out = append(out, inbound)
		}
		c.markSeen(cl, num)
	}

	return out, nil
}

// fetchRaw fetches the full RFC822 body of one message.
func (c *Channel) fetchRaw(cl *client.Client, num uint32) ([][]byte, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(num)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- cl.Fetch(seqSet, items, messages)
	}()

	var raws [][]byte
	for msg := range messages {
		r := msg.GetBody(section)
		if r == nil {
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		raws = append(raws, raw)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	return raws, nil
}

// markSeen flags one message \Seen. Failures are not fatal: the dedup set
// catches any redelivery on the next cycle.
func (c *Channel) markSeen(cl *client.Client, num uint32) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(num)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := cl.Store(seqSet, item, flags, nil); err != nil {
		c.logger.Debug().Uint32("seq", num).Err(err).Msg("failed to mark message seen")
	}
}

// checkIMAPConnectivity verifies login and folder select, logging out
// immediately regardless of outcome.
func (c *Channel) checkIMAPConnectivity() bool {
	cl, err := c.connectIMAP()
	if err != nil {
		return false
	}
	defer cl.Logout()

	if _, err := cl.Select(c.cfg.InboxFolder, true); err != nil {
		return false
	}
	return true
}
