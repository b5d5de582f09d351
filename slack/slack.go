// Package slack posts batch summaries to a Slack channel. The notifier
// is optional; a nil *Notifier is a no-op.
package slack

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/mempirate/faqex/log"
)

type Notifier struct {
	log     zerolog.Logger
	client  *slack.Client
	channel string
}

func NewNotifier(botToken, channel string) *Notifier {
	return &Notifier{
		log:     log.NewLogger("slack"),
		client:  slack.New(botToken),
		channel: channel,
	}
}

// NotifyBatchDone posts a summary of a finished extraction batch.
func (n *Notifier) NotifyBatchDone(processed, records int, missed []string) error {
	if n == nil {
		return nil
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "FAQ extraction finished: %d records from %d URLs.", records, processed)
	if len(missed) > 0 {
		fmt.Fprintf(&builder, "\n%d URLs could not be crawled:\n• %s", len(missed), strings.Join(missed, "\n• "))
	}

	_, _, err := n.client.PostMessage(n.channel, slack.MsgOptionText(builder.String(), false))
	if err != nil {
		return err
	}

	n.log.Info().Str("channel", n.channel).Msg("Posted batch summary")

	return nil
}
