package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/purgebot/internal/purge"
)

// reporter is the channel-facing reporting surface: status messages and the
// confirmation prompt. The purge work never depends on it, so implementations
// log and swallow send failures.
type reporter interface {
	// sendStatus posts a plain status message and returns its id, or ""
	// when the send failed.
	sendStatus(channelID, text string) string

	// editStatus rewrites a status message; a "" messageID is a no-op.
	editStatus(channelID, messageID, text string)

	// sendConfirmPrompt posts the confirmation embed with Delete/Cancel
	// buttons and returns the prompt's message id.
	sendConfirmPrompt(channelID, opID string, cmd *Command, matches []purge.Message) (string, error)

	// expirePrompt replaces the prompt content and strips its buttons.
	expirePrompt(channelID, messageID, text string)

	// retractPrompt deletes the prompt message after a negative choice.
	retractPrompt(channelID, messageID string)
}

// discordReporter posts over the gateway session.
type discordReporter struct {
	session *discordgo.Session
	log     *slog.Logger
}

func newDiscordReporter(session *discordgo.Session, log *slog.Logger) *discordReporter {
	return &discordReporter{session: session, log: log.With("component", "reporter")}
}

func (r *discordReporter) sendStatus(channelID, text string) string {
	msg, err := r.session.ChannelMessageSend(channelID, text)
	if err != nil {
		r.log.Warn("Failed to send status message", "channel_id", channelID, "error", err)
		return ""
	}
	return msg.ID
}

func (r *discordReporter) editStatus(channelID, messageID, text string) {
	if messageID == "" {
		return
	}
	if _, err := r.session.ChannelMessageEdit(channelID, messageID, text); err != nil {
		r.log.Warn("Failed to edit status message",
			"channel_id", channelID, "message_id", messageID, "error", err)
	}
}

func (r *discordReporter) sendConfirmPrompt(channelID, opID string, cmd *Command, matches []purge.Message) (string, error) {
	author := "anyone"
	if cmd.AuthorID != "" {
		author = fmt.Sprintf("<@%s>", cmd.AuthorID)
	}
	oldest := matches[0].Timestamp
	newest := matches[len(matches)-1].Timestamp

	embed := &discordgo.MessageEmbed{
		Title: "Confirm purge",
		Description: fmt.Sprintf("About to delete **%d** messages containing %q.",
			len(matches), cmd.SearchText),
		Color: 0xcc3333,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Author", Value: author, Inline: true},
			{Name: "Max age", Value: cmd.MaxAgeText, Inline: true},
			{Name: "Oldest match", Value: fmt.Sprintf("<t:%d:f>", oldest.Unix()), Inline: true},
			{Name: "Newest match", Value: fmt.Sprintf("<t:%d:f>", newest.Unix()), Inline: true},
		},
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Delete",
					Style:    discordgo.DangerButton,
					CustomID: confirmCustomID(opID),
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: cancelCustomID(opID),
				},
			},
		},
	}

	msg, err := r.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send confirmation prompt: %w", err)
	}
	return msg.ID, nil
}

func (r *discordReporter) expirePrompt(channelID, messageID, text string) {
	if messageID == "" {
		return
	}
	edit := discordgo.NewMessageEdit(channelID, messageID)
	edit.SetContent(text)
	edit.Embeds = &[]*discordgo.MessageEmbed{}
	edit.Components = &[]discordgo.MessageComponent{}
	if _, err := r.session.ChannelMessageEditComplex(edit); err != nil {
		r.log.Warn("Failed to expire confirmation prompt",
			"channel_id", channelID, "message_id", messageID, "error", err)
	}
}

func (r *discordReporter) retractPrompt(channelID, messageID string) {
	if messageID == "" {
		return
	}
	if err := r.session.ChannelMessageDelete(channelID, messageID); err != nil {
		r.log.Warn("Failed to retract confirmation prompt",
			"channel_id", channelID, "message_id", messageID, "error", err)
	}
}

func confirmCustomID(opID string) string { return "purge:confirm:" + opID }
func cancelCustomID(opID string) string  { return "purge:cancel:" + opID }
