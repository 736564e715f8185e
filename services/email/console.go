package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"github.com/profconnect/backend/core"
)

// consoleService prints messages to the log instead of sending them.
// It also records them so tests can assert on what would have been sent.
type consoleService struct {
	subjPrefix string

	mutex        sync.Mutex
	sentMessages []core.EmailMessage
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) *consoleService {
	return &consoleService{subjPrefix: "[" + conf.AppName + "] "}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if !(msg.HasRecipients() && msg.HasContent()) {
			continue
		}
		svc.mutex.Lock()
		svc.sentMessages = append(svc.sentMessages, *msg)
		svc.mutex.Unlock()

		body := &strings.Builder{}
		_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
		_, _ = fmt.Fprintf(body, "Subject: %s\r\n\r\n", svc.subjPrefix+msg.Subject)
		_, _ = fmt.Fprintf(body, "%s\r\n", msg.Body)
		log.Println(body.String())
	}
}

// SentMessages returns a copy of everything sent so far.
func (svc *consoleService) SentMessages() []core.EmailMessage {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	msgs := make([]core.EmailMessage, len(svc.sentMessages))
	copy(msgs, svc.sentMessages)
	return msgs
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
